package course

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Content is the typed view of Resource.Content, selected by the resource type.
type Content interface {
	Type() ResourceType
	Raw() string
}

// MediaContent points at a hosted binary (video, image, document, audio).
type MediaContent struct {
	Kind ResourceType
	URL  string
}

func (m MediaContent) Type() ResourceType { return m.Kind }
func (m MediaContent) Raw() string        { return m.URL }

// LinkContent is an external web page.
type LinkContent struct {
	URL string
}

func (LinkContent) Type() ResourceType { return ResourceLink }
func (l LinkContent) Raw() string      { return l.URL }

// TextContent is inline body text (text, assignment).
type TextContent struct {
	Kind ResourceType
	Body string
}

func (t TextContent) Type() ResourceType { return t.Kind }
func (t TextContent) Raw() string        { return t.Body }

// QuizContent holds optional instructions; questions live in the quizzes table.
type QuizContent struct {
	Instructions string
}

func (QuizContent) Type() ResourceType { return ResourceQuiz }
func (q QuizContent) Raw() string      { return q.Instructions }

var (
	ErrUnknownResourceType = errors.New("unknown resource type")
	ErrContentRequired     = errors.New("content is required")
)

// ParseContent validates raw against the shape required by t.
func ParseContent(t ResourceType, raw string) (Content, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case ResourceVideo, ResourceImage, ResourceDocument, ResourceAudio:
		u, err := parseHTTPURL(raw)
		if err != nil {
			return nil, err
		}
		return MediaContent{Kind: t, URL: u}, nil
	case ResourceLink:
		u, err := parseHTTPURL(raw)
		if err != nil {
			return nil, err
		}
		return LinkContent{URL: u}, nil
	case ResourceText, ResourceAssignment:
		if raw == "" {
			return nil, ErrContentRequired
		}
		return TextContent{Kind: t, Body: raw}, nil
	case ResourceQuiz:
		return QuizContent{Instructions: raw}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownResourceType, t)
}

func parseHTTPURL(raw string) (string, error) {
	if raw == "" {
		return "", ErrContentRequired
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("content must be a valid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("content must be an absolute http(s) URL")
	}
	return u.String(), nil
}
