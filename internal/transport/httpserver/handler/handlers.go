package handler

import (
	"sweets-app-go/internal/domain/catalog"
	"sweets-app-go/internal/domain/events"
	"sweets-app-go/pkg/logger"
)

type Handlers struct {
	Catalog *catalog.Service
	Events  *events.Service
	log     logger.Logger
}

func New(catalogSvc *catalog.Service, eventsSvc *events.Service, log logger.Logger) *Handlers {
	return &Handlers{
		Catalog: catalogSvc,
		Events:  eventsSvc,
		log:     log,
	}
}
