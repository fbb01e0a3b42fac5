package notify

import "fmt"

// emailLayout wraps body content in the shared HTML mail layout. Callers
// escape any user-supplied text.
func emailLayout(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
		.header { background-color: #1F3A5F; padding: 30px; text-align: center; }
		.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
		.content { padding: 40px 30px; color: #1F3A5F; line-height: 1.6; }
		.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #4CAF50; margin: 20px 0; text-align: center; }
		.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>COURSEHUB</h1></div>
		<div class="content">
			<h2>%s</h2>
			%s
		</div>
		<div class="footer">You received this email because you are enrolled on CourseHub.</div>
	</div>
</body>
</html>`, title, body)
}
