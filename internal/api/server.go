package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/nikmy/dynmodel/internal/model"
	"github.com/nikmy/dynmodel/pkg/errors"
	"github.com/nikmy/dynmodel/pkg/logger"
)

type Server interface {
	Serve(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// NewServer exposes the models of the installed storage command over
// HTTP. model.SetConnection must be called before serving.
func NewServer(cfg Config, log logger.Logger) Server {
	return newServer(cfg, log)
}

func newServer(cfg Config, log logger.Logger) *server {
	serveLog := log.With("api_http_server")

	fiberCfg := fiber.Config{
		ReadTimeout:             cfg.HTTP.ReadTimeout,
		WriteTimeout:            cfg.HTTP.WriteTimeout,
		IdleTimeout:             cfg.HTTP.IdleTimeout,
		DisableStartupMessage:   true,
		EnableTrustedProxyCheck: len(cfg.Proxy.Trusted) != 0,
		ProxyHeader:             cfg.Proxy.Header,
		TrustedProxies:          cfg.Proxy.Trusted,
	}

	fiberCfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return sendError(c, fiberErr.Code, fiberErr.Message)
		}

		serveLog.WithField("path", c.Path()).Warn(errors.WrapFail(err, "handle http request"))
		return sendError(c, http.StatusInternalServerError, "internal error")
	}

	s := &server{
		http:      fiber.New(fiberCfg),
		addr:      cfg.HTTP.Addr,
		resources: cfg.Resources,
		log:       serveLog,
	}

	s.setupRoutes()

	return s
}

type server struct {
	http      *fiber.App
	addr      string
	resources []string
	log       logger.Logger
}

// Serve listens until ctx is done and then returns nil; the caller is
// expected to call Shutdown.
func (s *server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.http.Listen(s.addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return errors.WrapFail(s.http.ShutdownWithContext(ctx), "shutdown http server")
}

func (s *server) setupRoutes() {
	r := s.http.Group("/:resource", s.checkResource)

	r.Get("/", s.handleAll)
	r.Post("/", s.handleCreate)
	r.Get("/:id", s.handleFind)
	r.Patch("/:id", s.handleUpdate)
}

func (s *server) checkResource(c *fiber.Ctx) error {
	if len(s.resources) != 0 && !slices.Contains(s.resources, c.Params("resource")) {
		return sendError(c, http.StatusNotFound, "unknown resource")
	}
	return c.Next()
}

func (s *server) handleAll(c *fiber.Ctx) error {
	resource := c.Params("resource")

	all, err := model.New(resource).All(c.UserContext())
	if err != nil {
		return errors.WrapFailf(err, "get all %s", resource)
	}

	return c.Status(http.StatusOK).JSON(all)
}

func (s *server) handleFind(c *fiber.Ctx) error {
	resource, id := c.Params("resource"), c.Params("id")

	found, err := model.New(resource).Find(c.UserContext(), id)
	if model.IsNotFound(err) {
		return sendError(c, http.StatusNotFound, "not found")
	}
	if err != nil {
		return errors.WrapFailf(err, "find %s/%s", resource, id)
	}

	return c.Status(http.StatusOK).JSON(found)
}

// handleCreate goes through Model.Update, so a body carrying an id
// updates that record instead.
func (s *server) handleCreate(c *fiber.Ctx) error {
	resource := c.Params("resource")

	attrs, err := s.parseAttributes(c)
	if err != nil {
		return sendError(c, http.StatusBadRequest, "bad json")
	}

	created, err := model.New(resource).Update(c.UserContext(), attrs)
	if model.IsNotFound(err) {
		return sendError(c, http.StatusNotFound, "not found")
	}
	if err != nil {
		return errors.WrapFailf(err, "create %s", resource)
	}

	return c.Status(http.StatusCreated).JSON(created)
}

// handleUpdate patches the record addressed by the path. The body may
// repeat its id but not name another record.
func (s *server) handleUpdate(c *fiber.Ctx) error {
	resource, id := c.Params("resource"), c.Params("id")

	patch, err := s.parseAttributes(c)
	if err != nil {
		return sendError(c, http.StatusBadRequest, "bad patch format")
	}

	if bodyID, ok := patch[model.KeyID]; ok && fmt.Sprint(bodyID) != id {
		return sendError(c, http.StatusBadRequest, "id in body does not match path")
	}
	delete(patch, model.KeyID)

	found, err := model.New(resource).Find(c.UserContext(), id)
	if err == nil {
		_, err = found.Update(c.UserContext(), patch)
	}
	if model.IsNotFound(err) {
		return sendError(c, http.StatusNotFound, "not found")
	}
	if err != nil {
		return errors.WrapFailf(err, "update %s/%s", resource, id)
	}

	return c.Status(http.StatusOK).JSON(found)
}

func (s *server) parseAttributes(c *fiber.Ctx) (model.Attributes, error) {
	var attrs model.Attributes
	err := c.BodyParser(&attrs)
	if err != nil {
		s.log.Warn(errors.WrapFail(err, "parse request body"))
		return nil, err
	}
	return attrs, nil
}

func sendError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(map[string]string{"status": "ERROR", "message": msg})
}
