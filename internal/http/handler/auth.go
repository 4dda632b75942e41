package handler

import (
	"github.com/gofiber/fiber/v2"

	"meetapi/internal/model"
	"meetapi/internal/service"
)

type registerRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// registerAuthRoutes attaches the unauthenticated account endpoints.
func registerAuthRoutes(app *fiber.App, userSvc service.UserService) {
	// Registration accepts either JSON or multipart/form-data; the multipart
	// form may carry an optional profile_image file.
	app.Post("/auth/register", func(c *fiber.Ctx) error {
		var req registerRequest
		var profileImage *service.UploadInput

		if form, err := c.MultipartForm(); err == nil && form != nil {
			req.FirstName = formValue(form.Value, "first_name")
			req.LastName = formValue(form.Value, "last_name")
			req.Email = formValue(form.Value, "email")
			req.Phone = formValue(form.Value, "phone")
			req.Password = formValue(form.Value, "password")

			if fh, err := c.FormFile("profile_image"); err == nil {
				in, err := readUpload(fh)
				if err != nil {
					return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
				}
				profileImage = in
			}
		} else if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		if req.FirstName == "" || req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "first_name, email and password are required")
		}

		res, err := userSvc.Register(c.UserContext(), service.RegisterInput{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Email:        req.Email,
			Phone:        req.Phone,
			Password:     req.Password,
			ProfileImage: profileImage,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(authResponse{Token: res.Token, User: res.User})
	})

	app.Post("/auth/login", func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "MISSING_FIELDS", "email and password are required")
		}

		res, err := userSvc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(authResponse{Token: res.Token, User: res.User})
	})
}

func formValue(values map[string][]string, key string) string {
	if v, ok := values[key]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}
