package controllers

import (
	"coursehub/middleware"

	"github.com/gofiber/fiber/v2"
)

// RequestCertificate requests a certificate for a completed course
func (ctl *Controller) RequestCertificate(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	courseID := c.Locals("courseID").(uint)

	request, err := ctl.Certificates.Request(c.UserContext(), a, courseID)
	ctl.record(c, a, "certificate.request", "course", courseID, nil, err)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate request submitted successfully!", request)
}

// GetUserCertificates gets all certificates for the current user
func (ctl *Controller) GetUserCertificates(c *fiber.Ctx) error {
	a, ok := caller(c)
	if !ok {
		return unauthorized(c)
	}
	mine, err := ctl.Certificates.ListMine(c.UserContext(), a)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", mine)
}
