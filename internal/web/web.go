package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/task"
)

// Server exposes the task API. Debug controls whether internal error text is
// echoed in 500 bodies; it must stay off outside development.
type Server struct {
	service *task.Service
	debug   bool
}

func NewServer(service *task.Service, debug bool) *Server {
	return &Server{service: service, debug: debug}
}

// Echo builds the routed application. The route set and response shapes are
// wire-compatible with the service this replaces, bare payloads on the task
// collection and a success envelope on completion included.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	api := e.Group("/api")
	api.GET("/tasks", s.listTasks)
	api.POST("/tasks", s.createTask)
	api.PUT("/tasks/:id/complete", s.completeTask)

	return e
}

type validationResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

type failureResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Error   *string `json:"error"`
}

type notFoundResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type completeResponse struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Data    model.Task `json:"data"`
}

func (s *Server) listTasks(c echo.Context) error {
	tasks, err := s.service.IncompleteTasks(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, s.failure("Failed to load tasks.", err))
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c echo.Context) error {
	var input model.CreateTaskInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Message: "The given data was invalid.",
			Errors:  map[string][]string{"title": {"The title field is required."}},
		})
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)

	if fieldErrors := validateCreate(input); len(fieldErrors) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, validationResponse{
			Message: firstError(fieldErrors),
			Errors:  fieldErrors,
		})
	}

	created, err := s.service.CreateTask(c.Request().Context(), input)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, s.failure("Failed to create task. Please try again.", err))
	}

	return c.JSON(http.StatusCreated, created)
}

func (s *Server) completeTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, notFoundResponse{Message: "Task not found."})
	}

	completed, err := s.service.CompleteTask(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return c.JSON(http.StatusNotFound, notFoundResponse{Message: "Task not found."})
		}
		return c.JSON(http.StatusInternalServerError, s.failure("Failed to update task.", err))
	}

	return c.JSON(http.StatusOK, completeResponse{
		Success: true,
		Message: "Task marked as completed successfully.",
		Data:    completed,
	})
}

func validateCreate(input model.CreateTaskInput) map[string][]string {
	fieldErrors := make(map[string][]string)
	if input.Title == "" {
		fieldErrors["title"] = append(fieldErrors["title"], "The title field is required.")
	} else if len([]rune(input.Title)) > 255 {
		fieldErrors["title"] = append(fieldErrors["title"], "The title field must not be greater than 255 characters.")
	}
	return fieldErrors
}

func firstError(fieldErrors map[string][]string) string {
	for _, messages := range fieldErrors {
		if len(messages) > 0 {
			return messages[0]
		}
	}
	return "The given data was invalid."
}

func (s *Server) failure(message string, err error) failureResponse {
	resp := failureResponse{Message: message}
	if s.debug && err != nil {
		detail := err.Error()
		resp.Error = &detail
	}
	return resp
}
