package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/logger"
	"github.com/spigell/fit-scorer/internal/profile"
)

const (
	headerRequestID = "X-Request-ID"
	localsLogger    = "logger"
)

type matchRequest struct {
	Profile        any `json:"profile"`
	JobRequirement any `json:"jobRequirement"`
}

type rankRequest struct {
	Profile any   `json:"profile"`
	Jobs    []any `json:"jobs"`
}

// requestID tags every request with an id taken from the client or generated,
// and logs the request once it is served.
func (s *Server) requestID(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Get(headerRequestID))
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(headerRequestID, id)

	log := s.logger.With(zap.String(logger.FieldRequestID, id))
	c.Locals(localsLogger, log)

	start := time.Now()
	err := c.Next()
	log.Debug("request served",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Duration("took", time.Since(start)),
		zap.Bool("failed", err != nil),
	)
	return err
}

func (s *Server) requestLogger(c *fiber.Ctx) *zap.Logger {
	if log, ok := c.Locals(localsLogger).(*zap.Logger); ok {
		return log
	}
	return s.logger
}

func (s *Server) health(c *fiber.Ctx) error {
	data := fiber.Map{"status": "ok"}
	if s.deps.Cache != nil {
		data["cache"] = s.deps.Cache.Stats(c.UserContext())
	}
	return success(c, "ok", data)
}

func (s *Server) match(c *fiber.Ctx) error {
	var req matchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := profile.DecodeProfile(req.Profile)
	if err != nil {
		return err
	}
	j, err := profile.DecodeJobRequirement(req.JobRequirement)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.RequestTimeout)
	defer cancel()

	result, err := s.deps.Scorer.ComputeScore(ctx, p, j)
	if err != nil {
		return err
	}

	s.requestLogger(c).Info("match computed",
		zap.String("profile_id", p.ID),
		zap.String("job_id", j.ID),
		zap.Int("score", result.Score),
	)
	return success(c, "match computed", result)
}

func (s *Server) rank(c *fiber.Ctx) error {
	var req rankRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	p, err := profile.DecodeProfile(req.Profile)
	if err != nil {
		return err
	}
	if len(req.Jobs) == 0 {
		return &profile.MalformedInputError{Field: "jobs", Reason: "needs at least one job requirement"}
	}

	jobs := make([]*profile.JobRequirement, 0, len(req.Jobs))
	for i, raw := range req.Jobs {
		j, err := profile.DecodeJobRequirement(raw)
		if err != nil {
			var malformed *profile.MalformedInputError
			if errors.As(err, &malformed) {
				malformed.Field = fmt.Sprintf("jobs[%d]%s", i, strings.TrimPrefix(malformed.Field, "jobRequirement"))
			}
			return err
		}
		jobs = append(jobs, j)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.RequestTimeout)
	defer cancel()

	ranked, err := s.deps.Ranker.Rank(ctx, p, jobs)
	if err != nil {
		return err
	}

	s.requestLogger(c).Info("ranking computed",
		zap.String("profile_id", p.ID),
		zap.Int("jobs", len(jobs)),
		zap.Int("ranked", len(ranked.Candidates)),
	)
	return success(c, "ranking computed", ranked)
}

func parseBody(c *fiber.Ctx, out any) error {
	body := c.Body()
	if len(body) == 0 {
		return &profile.MalformedInputError{Field: "body", Reason: "is empty"}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &profile.MalformedInputError{Field: "body", Reason: err.Error()}
	}
	return nil
}
