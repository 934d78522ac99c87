package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"askdb/cli/internal/query"
	"askdb/cli/internal/session"
	"askdb/cli/internal/sqlexec"
)

const sessionKey = "askdb.session"

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	api.GET("/health", s.health)
	api.GET("/schema", s.getSchema)

	api.POST("/sessions", s.createSession)

	sess := api.Group("/sessions/:id", s.withSession)
	sess.GET("", s.getSession)
	sess.DELETE("", s.deleteSession)
	sess.POST("/login", s.login)
	sess.PUT("/write", s.setWrite)
	sess.POST("/query", s.runQuery)
	sess.GET("/history", s.history)
	sess.GET("/tables/:table/sample", s.sample)
}

type sessionView struct {
	ID              string    `json:"id"`
	Created         time.Time `json:"created"`
	Admin           bool      `json:"admin"`
	User            string    `json:"user,omitempty"`
	WritePermission bool      `json:"write_permission"`
}

func viewOf(sess *session.Session) sessionView {
	return sessionView{
		ID:              sess.ID,
		Created:         sess.Created,
		Admin:           sess.IsAdmin(),
		User:            sess.User(),
		WritePermission: sess.WritePermission(),
	}
}

type queryView struct {
	ID             string         `json:"id"`
	Question       string         `json:"question,omitempty"`
	Statement      string         `json:"statement"`
	Classification string         `json:"classification"`
	Rewritten      bool           `json:"rewritten"`
	Result         sqlexec.Result `json:"result"`
	DurationMS     int64          `json:"duration_ms"`
}

func viewOfOutcome(o query.Outcome) queryView {
	return queryView{
		ID:             o.ID,
		Question:       o.Question,
		Statement:      o.Statement,
		Classification: o.Classification.String(),
		Rewritten:      o.Rewritten,
		Result:         o.Result,
		DurationMS:     o.Duration.Milliseconds(),
	}
}

func (s *Server) withSession(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		notFound(c, "session not found or expired")
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

func (s *Server) health(c *gin.Context) {
	success(c, gin.H{"status": "ok", "database": s.dbType})
}

func (s *Server) getSchema(c *gin.Context) {
	if s.schema == nil {
		notFound(c, "schema inspection is not available")
		return
	}
	tables, err := s.schema.Preview(c.Request.Context())
	if err != nil {
		serverError(c, s.log, err)
		return
	}
	success(c, tables)
}

func (s *Server) createSession(c *gin.Context) {
	sess := s.sessions.Create()
	s.log.Info("session created", "session_id", sess.ID)
	created(c, viewOf(sess))
}

func (s *Server) getSession(c *gin.Context) {
	success(c, viewOf(current(c)))
}

func (s *Server) deleteSession(c *gin.Context) {
	sess := current(c)
	s.sessions.Delete(sess.ID)
	s.log.Info("session closed", "session_id", sess.ID)
	success(c, gin.H{"id": sess.ID})
}

type loginRequest struct {
	User     string `json:"user" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user and password are required")
		return
	}
	if s.verifier == nil {
		notFound(c, "administrator login is not configured")
		return
	}
	sess := current(c)
	if err := sess.Login(s.verifier, req.User, req.Password); err != nil {
		s.log.Warn("admin login failed", "session_id", sess.ID, "user", req.User)
		typedError(c, err, nil)
		return
	}
	s.log.Info("admin logged in", "session_id", sess.ID, "user", req.User)
	success(c, viewOf(sess))
}

type writeRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

func (s *Server) setWrite(c *gin.Context) {
	var req writeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, `body must be {"enabled": true|false}`)
		return
	}
	sess := current(c)
	if err := sess.SetWrite(*req.Enabled); err != nil {
		typedError(c, err, nil)
		return
	}
	s.log.Info("write mode changed", "session_id", sess.ID, "enabled", *req.Enabled)
	success(c, viewOf(sess))
}

type queryRequest struct {
	SQL      string `json:"sql"`
	Question string `json:"question"`
}

func (s *Server) runQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}
	hasSQL := strings.TrimSpace(req.SQL) != ""
	hasQuestion := strings.TrimSpace(req.Question) != ""
	if hasSQL == hasQuestion {
		badRequest(c, `exactly one of "sql" or "question" is required`)
		return
	}

	sess := current(c)
	write := sess.WritePermission()
	var out query.Outcome
	if hasSQL {
		out = s.queries.Run(c.Request.Context(), req.SQL, write)
	} else {
		out = s.queries.Ask(c.Request.Context(), req.Question, write)
	}
	s.remember(sess, out)
	respond(c, out)
}

func (s *Server) sample(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if limit < 1 || limit > 1000 {
		limit = 5
	}
	out := s.queries.Sample(c.Request.Context(), c.Param("table"), limit)
	s.remember(current(c), out)
	respond(c, out)
}

func (s *Server) history(c *gin.Context) {
	success(c, current(c).Transcript())
}

func (s *Server) remember(sess *session.Session, out query.Outcome) {
	ex := session.Exchange{
		Question:  out.Question,
		Statement: out.Statement,
		Outcome:   string(out.Result.Kind),
	}
	if out.Err != nil {
		ex.Error = query.Message(out.Err)
	}
	sess.Record(ex)
}

func respond(c *gin.Context, out query.Outcome) {
	if out.Err != nil {
		typedError(c, out.Err, viewOfOutcome(out))
		return
	}
	success(c, viewOfOutcome(out))
}
