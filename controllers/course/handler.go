package controllers

import (
	"coursehub/services/catalog"
	"coursehub/services/progress"
)

// Handler exposes the catalog and progress services over HTTP. Errors are
// returned to fiber and rendered by middleware.ErrorHandler.
type Handler struct {
	Catalog  *catalog.Service
	Progress *progress.Service
}

func NewHandler(catalogSvc *catalog.Service, progressSvc *progress.Service) *Handler {
	return &Handler{Catalog: catalogSvc, Progress: progressSvc}
}
