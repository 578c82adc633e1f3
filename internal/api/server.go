package api

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strconv"

	"github.com/LJTian/xplorer/internal/aggregator"
	"github.com/LJTian/xplorer/internal/bot"
	"github.com/LJTian/xplorer/internal/collector"
	"github.com/gin-gonic/gin"
)

type Server struct {
	bot *bot.Bot
}

func NewServer(b *bot.Bot) *Server {
	return &Server{bot: b}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/sources", s.listSources)
		v1.GET("/articles", s.listArticles)
		v1.POST("/interactions", s.interaction)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type sourceView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) listSources(c *gin.Context) {
	collectors := s.bot.Aggregator().Registry().All()
	out := make([]sourceView, 0, len(collectors))
	for _, col := range collectors {
		out = append(out, sourceView{Name: col.Name(), Description: col.Description()})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    out,
	})
}

type failureView struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// listArticles 直接返回聚合后的结构化结果，参数语义与 collect 指令一致
func (s *Server) listArticles(c *gin.Context) {
	var opts bot.Options
	if v, ok := c.GetQuery("source"); ok {
		opts.Source = &v
	}
	if v, ok := c.GetQuery("query"); ok {
		opts.Query = &v
	}
	if v, ok := c.GetQuery("max_results"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "invalid_argument",
				"message": "max_results must be an integer",
			})
			return
		}
		opts.MaxResults = &n
	}

	source, query, maxResults := s.bot.Resolve(opts)
	res, err := s.bot.Aggregator().Aggregate(c.Request.Context(), source, query, maxResults)
	if err != nil {
		var unknown *aggregator.UnknownSourceError
		switch {
		case errors.As(err, &unknown):
			c.JSON(http.StatusNotFound, gin.H{"code": "unknown_source", "message": err.Error()})
		case errors.Is(err, collector.ErrTransport), errors.Is(err, collector.ErrDecode):
			c.JSON(http.StatusBadGateway, gin.H{"code": "collection_failed", "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "message": err.Error()})
		}
		return
	}

	failures := make([]failureView, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, failureView{Source: f.Source, Error: f.Err.Error()})
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data": gin.H{
			"source":   source,
			"query":    query,
			"articles": res.Articles,
			"failures": failures,
		},
	})
}

// interaction 接收聊天网关转发的指令，回复单段文本
func (s *Server) interaction(c *gin.Context) {
	var cmd bot.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_argument", "message": err.Error()})
		return
	}

	reply, err := s.bot.Handle(c.Request.Context(), cmd)
	if err != nil {
		if errors.Is(err, bot.ErrUnknownCommand) {
			c.JSON(http.StatusBadRequest, gin.H{"code": "unknown_command", "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "message": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": reply})
}

// BasicAuthMiddleware 为整个服务增加 Basic Auth，/health 不做认证便于健康检查
func BasicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
