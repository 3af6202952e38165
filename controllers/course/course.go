package controllers

import (
	"coursehub/middleware"
	"coursehub/services/actor"
	"coursehub/services/assessment"
	"coursehub/services/audit"
	"coursehub/services/certificate"
	"coursehub/services/progress"

	"github.com/gofiber/fiber/v2"
)

// Controller exposes the progress, assessment and certificate services over
// HTTP. Every state-changing handler is audited.
type Controller struct {
	Progress     *progress.Service
	Assessment   *assessment.Service
	Certificates *certificate.Service
	Audit        *audit.Recorder
}

func New(p *progress.Service, a *assessment.Service, certs *certificate.Service, rec *audit.Recorder) *Controller {
	return &Controller{Progress: p, Assessment: a, Certificates: certs, Audit: rec}
}

// caller returns the actor set by JWTMiddleware.
func caller(c *fiber.Ctx) (actor.Actor, bool) {
	return middleware.ActorFrom(c)
}

func unauthorized(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
}

// target is the user a request acts on: the caller unless an id is given.
func target(a actor.Actor, userID uint) uint {
	if userID == 0 {
		return a.UserID
	}
	return userID
}

// record audits the outcome of a state-changing call.
func (ctl *Controller) record(c *fiber.Ctx, a actor.Actor, action, entityType string, entityID uint, details interface{}, err error) {
	ctl.Audit.Record(c.UserContext(), audit.Entry{
		RequestID:  middleware.RequestIDFrom(c),
		Actor:      a,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}, err)
}
