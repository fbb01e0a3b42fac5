package course

import "time"

// ResourceType is the discriminator of Resource.Content.
type ResourceType string

const (
	ResourceVideo      ResourceType = "video"
	ResourceDocument   ResourceType = "document"
	ResourceQuiz       ResourceType = "quiz"
	ResourceLink       ResourceType = "link"
	ResourceImage      ResourceType = "image"
	ResourceAssignment ResourceType = "assignment"
	ResourceText       ResourceType = "text"
	ResourceAudio      ResourceType = "audio"
)

// ResourceTypes is the full stored enum.
var ResourceTypes = []ResourceType{
	ResourceVideo, ResourceDocument, ResourceQuiz, ResourceLink,
	ResourceImage, ResourceAssignment, ResourceText, ResourceAudio,
}

// CreatableResourceTypes is the narrower set accepted when authoring new resources.
var CreatableResourceTypes = []ResourceType{
	ResourceVideo, ResourceDocument, ResourceImage, ResourceLink, ResourceQuiz,
}

func (t ResourceType) IsValid() bool {
	return containsType(ResourceTypes, t)
}

func (t ResourceType) IsCreatable() bool {
	return containsType(CreatableResourceTypes, t)
}

// HasExternalAsset reports whether content of this type is a binary hosted in the asset store.
func (t ResourceType) HasExternalAsset() bool {
	switch t {
	case ResourceVideo, ResourceImage, ResourceDocument, ResourceAudio:
		return true
	}
	return false
}

func containsType(set []ResourceType, t ResourceType) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}

// Interactions are engagement counters of a resource.
type Interactions struct {
	Views     int `json:"views" gorm:"not null;default:0"`
	Likes     int `json:"likes" gorm:"not null;default:0"`
	Downloads int `json:"downloads" gorm:"not null;default:0"`
}

// Resource is an ordered item inside a section.
type Resource struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Title        string       `json:"title" gorm:"not null"`
	Description  string       `json:"description" gorm:"type:text"`
	SectionID    uint         `json:"section_id" gorm:"not null;index;uniqueIndex:idx_resources_section_order,where:is_deleted = false"`
	Type         ResourceType `json:"type" gorm:"not null"`
	Content      string       `json:"content" gorm:"type:text"`
	OrderIndex   int          `json:"order" gorm:"column:order_index;not null;uniqueIndex:idx_resources_section_order,where:is_deleted = false"`
	IsPublished  bool         `json:"is_published" gorm:"not null"`
	IsFree       bool         `json:"is_free" gorm:"not null"`
	IsRequired   bool         `json:"is_required" gorm:"not null"`
	Interactions Interactions `json:"interactions" gorm:"embedded;embeddedPrefix:interactions_"`
	IsActive     bool         `json:"is_active" gorm:"not null"`
	IsDeleted    bool         `json:"is_deleted" gorm:"not null"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (r *Resource) IsLive() bool {
	return r.IsActive && !r.IsDeleted
}

func (r *Resource) MarkDeleted(now time.Time) {
	r.IsDeleted = true
	r.IsActive = false
	r.DeletedAt = &now
}

// AssetURL returns the hosted asset URL for media resources.
func (r *Resource) AssetURL() (string, bool) {
	if !r.Type.HasExternalAsset() {
		return "", false
	}
	parsed, err := ParseContent(r.Type, r.Content)
	if err != nil {
		return "", false
	}
	media, ok := parsed.(MediaContent)
	if !ok {
		return "", false
	}
	return media.URL, true
}
