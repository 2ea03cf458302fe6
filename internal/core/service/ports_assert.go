package service

import "github.com/edulearn/learner-gateway/internal/core/ports"

var (
	_ ports.StreakService      = (*StreakService)(nil)
	_ ports.AuthService        = (*AuthService)(nil)
	_ ports.CatalogService     = (*CatalogService)(nil)
	_ ports.CertificateSource  = (*CatalogService)(nil)
	_ ports.CertificateService = (*CertificateService)(nil)
	_ ports.ActivitySink       = (*ActivitySink)(nil)
)
