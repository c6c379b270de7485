package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type updateTaskRequest struct {
	Done *bool `json:"done" validate:"required"`
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *Server) listMeetings(c echo.Context) error {
	list, err := s.meetings.List(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

func (s *Server) getMeeting(c echo.Context) error {
	m, err := s.meetings.Get(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (s *Server) getSummary(c echo.Context) error {
	sum, err := s.meetings.Summary(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

func (s *Server) getTranscript(c echo.Context) error {
	link, err := s.meetings.TranscriptURL(c.Request().Context(), userID(c), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, link)
}

func (s *Server) listTasks(c echo.Context) error {
	tasks, err := s.meetings.Tasks(c.Request().Context(), userID(c), c.QueryParam("meetingId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(tasks))
}

func (s *Server) updateTask(c echo.Context) error {
	var req updateTaskRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	task, err := s.meetings.SetTaskDone(c.Request().Context(), userID(c), c.Param("id"), *req.Done)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

func (s *Server) listIntegrations(c echo.Context) error {
	list, err := s.meetings.Integrations(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

func (s *Server) listAutomations(c echo.Context) error {
	list, err := s.meetings.Automations(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(list))
}

func (s *Server) getAccount(c echo.Context) error {
	acc, err := s.users.Account(c.Request().Context(), userID(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acc)
}
