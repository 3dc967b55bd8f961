package engine

import "github.com/gofiber/fiber/v2"

// ServiceResponse is the uniform outcome envelope every endpoint
// returns, success or failure. Errors never cross the HTTP boundary in
// any other shape.
type ServiceResponse struct {
	Succeeded      bool   `json:"succeeded"`
	Message        string `json:"message"`
	ResponseObject any    `json:"responseObject"`
	StatusCode     int    `json:"statusCode"`
}

// Success builds a successful envelope.
func Success(message string, responseObject any, statusCode int) ServiceResponse {
	return ServiceResponse{
		Succeeded:      true,
		Message:        message,
		ResponseObject: responseObject,
		StatusCode:     statusCode,
	}
}

// Failure builds a failed envelope. ResponseObject is always null on
// failure.
func Failure(message string, statusCode int) ServiceResponse {
	return ServiceResponse{
		Succeeded:      false,
		Message:        message,
		ResponseObject: nil,
		StatusCode:     statusCode,
	}
}

func respond(c *fiber.Ctx, sr ServiceResponse) error {
	return c.Status(sr.StatusCode).JSON(sr)
}
