package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"platwatch/internal/domain"
	"platwatch/internal/engine"
	"platwatch/internal/infra"
	"platwatch/internal/infra/storage"
)

// Server is the HTTP surface for the display layer: read access to the
// record store plus the control operations of the scheduler. It never
// blocks on the refresh pipeline: reads are store snapshots and controls
// are flag flips and queue pushes.
type Server struct {
	store   *engine.RecordStore
	sched   *engine.Scheduler
	storage *storage.Storage
	hub     *Hub
	log     *slog.Logger
}

// NewServer wires the API over the given engine components. storage may
// be nil when persistence is disabled.
func NewServer(store *engine.RecordStore, sched *engine.Scheduler, st *storage.Storage, hub *Hub) *Server {
	return &Server{
		store:   store,
		sched:   sched,
		storage: st,
		hub:     hub,
		log:     slog.Default().With(slog.String("component", "api")),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/records", s.listRecords)
		api.GET("/records/:slot", s.getRecord)
		api.POST("/pause", s.pause)
		api.POST("/resume", s.resume)
		api.POST("/filter", s.enterFilter)
		api.DELETE("/filter", s.exitFilter)
		api.POST("/items/:slot/refresh", s.refreshNow)
		api.PUT("/items/:slot/track", s.track)
		api.POST("/queues/:name/purge", s.purge)
		api.GET("/stats", s.stats)
	}
	if s.hub != nil {
		r.GET("/ws", gin.WrapH(s.hub))
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	s.log.Info("api server listening", slog.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) listRecords(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Snapshot())
}

func (s *Server) getRecord(c *gin.Context) {
	slot, ok := s.slotParam(c)
	if !ok {
		return
	}
	rec, found := s.store.Get(slot)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown slot"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) pause(c *gin.Context) {
	s.sched.Pause()
	c.JSON(http.StatusOK, gin.H{"paused": true})
}

func (s *Server) resume(c *gin.Context) {
	s.sched.Resume()
	c.JSON(http.StatusOK, gin.H{"paused": false})
}

type filterRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) enterFilter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := strings.ToLower(strings.TrimSpace(req.Query))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query must not be blank"})
		return
	}

	s.sched.EnterFilter(func(rec domain.ItemRecord) bool {
		return strings.Contains(strings.ToLower(rec.Name), query)
	})
	c.JSON(http.StatusAccepted, gin.H{"query": query})
}

func (s *Server) exitFilter(c *gin.Context) {
	s.sched.ExitFilter()
	c.Status(http.StatusNoContent)
}

func (s *Server) refreshNow(c *gin.Context) {
	slot, ok := s.slotParam(c)
	if !ok {
		return
	}
	if err := s.sched.RefreshNow(slot); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"slot": slot})
}

type trackRequest struct {
	Enabled bool            `json:"enabled"`
	Target  decimal.Decimal `json:"target"`
}

func (s *Server) track(c *gin.Context) {
	slot, ok := s.slotParam(c)
	if !ok {
		return
	}

	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.store.Update(slot, func(r *domain.ItemRecord) {
		if !req.Enabled {
			r.Track = domain.TrackTarget{}
			return
		}
		current, _ := r.CurrentPrice()
		r.Track = domain.NewTrackTarget(req.Target, current)
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if s.storage != nil {
		if rec, found := s.store.Get(slot); found {
			if err := s.storage.SaveRecord(rec); err != nil {
				s.log.Warn("failed to persist tracking target", slog.String("error", err.Error()))
			}
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) purge(c *gin.Context) {
	if err := s.sched.Purge(c.Param("name")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":   infra.GlobalMetrics.Snapshot(),
		"queues":    s.sched.QueueLengths(),
		"paused":    s.sched.Paused(),
		"filtering": s.sched.Filtering(),
		"records":   s.store.Len(),
		"clients":   s.hub.Clients(),
	})
}

func (s *Server) slotParam(c *gin.Context) (int, bool) {
	slot, err := strconv.Atoi(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot must be an integer"})
		return 0, false
	}
	return slot, true
}
