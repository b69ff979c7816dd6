package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/causet/internal/config"
	"github.com/agenthands/causet/internal/core"
	"github.com/agenthands/causet/internal/core/export"
	"github.com/agenthands/causet/internal/core/model"
	"github.com/agenthands/causet/internal/core/quantify"
	"github.com/agenthands/causet/internal/driver"
)

type Server struct {
	Causet *core.Causet
	Cfg    *config.Config
}

// New wires a server around an existing model, for tests and embedding.
func New(c *core.Causet, cfg *config.Config) *Server {
	return &Server{Causet: c, Cfg: cfg}
}

// NewServer builds the production server: config file (CONFIG_PATH or
// config/config.toml), env overrides, Memgraph connection, and a graph
// load from the store.
func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	d, err := driver.NewMemgraphDriver(cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password)
	if err != nil {
		log.Fatalf("Failed to connect to Memgraph: %v", err)
	}
	if err := d.BuildIndices(context.Background()); err != nil {
		log.Printf("Warning: failed to build indices: %v", err)
	}

	c := core.New(d)
	if err := c.Load(context.Background()); err != nil {
		log.Fatalf("Failed to load graph from store: %v", err)
	}
	log.Printf("Loaded %d factors, %d links, %d references",
		len(c.Nodes()), len(c.Links()), len(c.References()))

	return New(c, cfg)
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/nodes", s.CreateNode)
	r.DELETE("/nodes/:id", s.DeleteNode)
	r.POST("/links", s.CreateLink)
	r.DELETE("/links/:id", s.DeleteLink)
	r.POST("/references", s.CreateReference)
	r.DELETE("/references/:id", s.DeleteReference)
	r.GET("/graph", s.GetGraph)
	r.POST("/quantify", s.Quantify)

	return r
}

func (s *Server) CreateNode(c *gin.Context) {
	var node model.Node
	if err := c.ShouldBindJSON(&node); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := s.Causet.AddNode(c.Request.Context(), node); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, node)
}

func (s *Server) DeleteNode(c *gin.Context) {
	if err := s.Causet.RemoveNode(c.Request.Context(), c.Param("id")); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) CreateLink(c *gin.Context) {
	var link model.Link
	if err := c.ShouldBindJSON(&link); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	created, err := s.Causet.AddLink(c.Request.Context(), link)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) DeleteLink(c *gin.Context) {
	if err := s.Causet.RemoveLink(c.Request.Context(), c.Param("id")); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) CreateReference(c *gin.Context) {
	var ref model.Reference
	if err := c.ShouldBindJSON(&ref); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := s.Causet.AddReference(c.Request.Context(), ref); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ref)
}

func (s *Server) DeleteReference(c *gin.Context) {
	if err := s.Causet.RemoveReference(c.Request.Context(), c.Param("id")); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) GetGraph(c *gin.Context) {
	c.JSON(http.StatusOK, export.Snapshot(s.Causet))
}

type QuantifyRequest struct {
	Target     string `json:"target" binding:"required"`
	Method     string `json:"method"`
	SampleSize int    `json:"sample_size"`
	Seed       uint64 `json:"seed"`
}

func (s *Server) Quantify(c *gin.Context) {
	var req QuantifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	method := quantify.Arithmetic
	if req.Method != "" {
		var err error
		if method, err = quantify.ParseMethod(req.Method); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	cfg := s.quantifyConfig()
	if req.SampleSize > 0 {
		cfg.SampleSize = req.SampleSize
	}
	cfg.Seed = req.Seed

	cpt, err := s.Causet.Quantify(req.Target, method, cfg)
	if err != nil {
		log.Printf("Quantification of [%s] failed: %v", req.Target, err)
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"target": req.Target,
		"method": method.String(),
		"cpt":    export.Entries(cpt),
	})
}

func (s *Server) quantifyConfig() quantify.Config {
	q := s.Cfg.Quantify
	return quantify.Config{
		SampleSize:            q.SampleSize,
		Confidence:            q.Confidence,
		MaxParents:            q.MaxParents,
		Workers:               q.Workers,
		SubstituteZeroWeights: q.SubstituteZeroWeights,
	}
}

// renderError maps model errors onto HTTP statuses: unknown ids are
// 404, id collisions 409, structural precondition failures in a
// quantification run 422.
func (s *Server) renderError(c *gin.Context, err error) {
	var (
		notFound   *core.NotFoundError
		exists     *core.AlreadyExistsError
		badEst     *model.ConfigurationError
		degenerate *quantify.DegenerateWeightError
		noEvidence *quantify.NoEvidenceError
		noParents  *quantify.NoPredecessorsError
		tooMany    *quantify.ParentLimitError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &exists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &badEst),
		errors.As(err, &degenerate),
		errors.As(err, &noEvidence),
		errors.As(err, &noParents),
		errors.As(err, &tooMany):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
