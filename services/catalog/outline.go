package catalog

import (
	"context"

	"coursehub/apperrors"
	"coursehub/models"
	courseModels "coursehub/models/course"
)

// SectionOutline is a section with its ordered resources.
type SectionOutline struct {
	courseModels.Section
	Resources []courseModels.Resource `json:"resources"`
}

// Outline is the full ordered tree of a course as seen by one viewer.
type Outline struct {
	Course   courseModels.Course `json:"course"`
	Sections []SectionOutline    `json:"sections"`
}

// CourseOutline returns the course tree. Viewers who do not manage the course
// only see published sections and published resources.
func (s *Service) CourseOutline(ctx context.Context, viewer models.Principal, courseID uint) (*Outline, error) {
	db := s.db.WithContext(ctx)
	c, manager, err := visibleCourse(db, viewer, courseID)
	if err != nil {
		return nil, apperrors.From(err)
	}

	sections, err := liveSections(db, c.ID, !manager)
	if err != nil {
		return nil, apperrors.From(err)
	}
	ids := make([]uint, len(sections))
	for i := range sections {
		ids[i] = sections[i].ID
	}
	resources, err := liveResources(db, ids, !manager)
	if err != nil {
		return nil, apperrors.From(err)
	}

	bySection := make(map[uint][]courseModels.Resource, len(sections))
	for _, r := range resources {
		bySection[r.SectionID] = append(bySection[r.SectionID], r)
	}
	out := &Outline{Course: *c, Sections: make([]SectionOutline, 0, len(sections))}
	for _, sec := range sections {
		rs := bySection[sec.ID]
		if rs == nil {
			rs = []courseModels.Resource{}
		}
		out.Sections = append(out.Sections, SectionOutline{Section: sec, Resources: rs})
	}
	return out, nil
}
