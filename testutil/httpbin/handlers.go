package httpbin

import (
	"encoding/base64"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/kbukum/restclient/errors"
)

const maxDelay = 10 * time.Second

// Echo is the body returned by the echo endpoints.
type Echo struct {
	Args      map[string]any    `json:"args"`
	Data      string            `json:"data"`
	Files     map[string]string `json:"files"`
	FileTypes map[string]string `json:"file_types"`
	Form      map[string]any    `json:"form"`
	Headers   map[string]string `json:"headers"`
	JSON      any               `json:"json"`
	Method    string            `json:"method"`
	Origin    string            `json:"origin"`
	URL       string            `json:"url"`
}

// SampleJSON is the document served by /json.
const SampleJSON = `{"slideshow":{"author":"Yours Truly","date":"date of publication","slides":[{"title":"Wake up to WonderWidgets!","type":"all"},{"items":["Why <em>WonderWidgets</em> are great","Who <em>buys</em> WonderWidgets"],"title":"Overview","type":"all"}],"title":"Sample Slide Show"}}`

// SampleHTML is the document served by /html.
const SampleHTML = "<!DOCTYPE html>\n<html><head></head><body><h1>Herman Melville - Moby-Dick</h1></body></html>\n"

func (s *Server) routes() *gin.Engine {
	e := gin.New()
	e.Use(gin.Recovery(), s.record)

	e.Any("/anything", echo)
	e.Any("/anything/*path", echo)
	e.GET("/get", echo)
	e.POST("/post", echo)
	e.PUT("/put", echo)
	e.PATCH("/patch", echo)
	e.DELETE("/delete", echo)

	e.Any("/status/:code", status)
	e.Any("/delay/:seconds", delay)
	e.GET("/drip", drip)
	e.GET("/basic-auth/:user/:passwd", basicAuth)
	e.GET("/bearer", bearer)
	e.GET("/bytes/:n", randomBytes)
	e.GET("/json", func(c *gin.Context) { c.Data(http.StatusOK, "application/json", []byte(SampleJSON)) })
	e.GET("/html", func(c *gin.Context) { c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(SampleHTML)) })
	e.GET("/headers", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"headers": flattenHeaders(c.Request)}) })
	e.GET("/user-agent", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"user-agent": c.Request.UserAgent()}) })
	e.GET("/uuid", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"uuid": uuid.NewString()}) })

	e.NoRoute(func(c *gin.Context) {
		respondError(c, apperrors.NotFound("route "+c.Request.URL.Path))
	})
	return e
}

func respondError(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}

func echo(c *gin.Context) {
	out, err := describe(c.Request)
	if err != nil {
		respondError(c, apperrors.InvalidInput("body", err.Error()))
		return
	}
	c.JSON(http.StatusOK, out)
}

// describe builds the echo of r, parsing form and multipart bodies.
func describe(r *http.Request) (*Echo, error) {
	out := &Echo{
		Args:      flattenValues(r.URL.Query()),
		Files:     map[string]string{},
		FileTypes: map[string]string{},
		Form:      map[string]any{},
		Headers:   flattenHeaders(r),
		Method:    r.Method,
		Origin:    r.RemoteAddr,
		URL:       requestURL(r),
	}

	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, err
		}
		out.Form = flattenValues(r.MultipartForm.Value)
		for field, headers := range r.MultipartForm.File {
			fh := headers[0]
			f, err := fh.Open()
			if err != nil {
				return nil, err
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				return nil, err
			}
			out.Files[field] = fileContent(data, fh.Header.Get("Content-Type"))
			out.FileTypes[field] = fh.Header.Get("Content-Type")
		}
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		out.Form = flattenValues(r.PostForm)
	default:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		out.Data = string(data)
		var v any
		if len(data) > 0 && sonic.ConfigStd.Unmarshal(data, &v) == nil {
			out.JSON = v
		}
	}
	return out, nil
}

func status(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil || code < 100 || code > 599 {
		respondError(c, apperrors.InvalidInput("code", "not an HTTP status"))
		return
	}
	if code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Basic realm="Fake Realm"`)
	}
	c.Status(code)
}

func delay(c *gin.Context) {
	secs, err := strconv.ParseFloat(c.Param("seconds"), 64)
	if err != nil || secs < 0 {
		respondError(c, apperrors.InvalidInput("seconds", "not a duration"))
		return
	}
	d := min(time.Duration(secs*float64(time.Second)), maxDelay)

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		echo(c)
	case <-c.Request.Context().Done():
	}
}

// drip sends numbytes bytes spread evenly over duration seconds, flushing
// after the headers and after every byte.
func drip(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("numbytes", "10"))
	if err != nil || n <= 0 || n > 10*1024 {
		respondError(c, apperrors.InvalidInput("numbytes", "must be between 1 and 10240"))
		return
	}
	secs, err := strconv.ParseFloat(c.DefaultQuery("duration", "2"), 64)
	if err != nil || secs < 0 {
		respondError(c, apperrors.InvalidInput("duration", "not a duration"))
		return
	}
	interval := min(time.Duration(secs*float64(time.Second)), maxDelay) / time.Duration(n)

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", strconv.Itoa(n))
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	for i := 0; i < n; i++ {
		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
		case <-c.Request.Context().Done():
			timer.Stop()
			return
		}
		_, _ = c.Writer.Write([]byte{'*'})
		c.Writer.Flush()
	}
}

func basicAuth(c *gin.Context) {
	user, pass, ok := c.Request.BasicAuth()
	if !ok || user != c.Param("user") || pass != c.Param("passwd") {
		c.Header("WWW-Authenticate", `Basic realm="Fake Realm"`)
		respondError(c, apperrors.Unauthorized("invalid basic credentials"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": user})
}

func bearer(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		c.Header("WWW-Authenticate", "Bearer")
		respondError(c, apperrors.Unauthorized("missing bearer token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "token": token})
}

// randomBytes serves n deterministic bytes, so tests can compare content.
func randomBytes(c *gin.Context) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 0 || n > 100*1024 {
		respondError(c, apperrors.InvalidInput("n", "must be between 0 and 102400"))
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", Bytes(n))
}

// Bytes returns the payload /bytes/n serves.
func Bytes(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 256)
	}
	return b
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// flattenValues returns single values as strings and repeated ones as lists.
func flattenValues(v map[string][]string) map[string]any {
	out := make(map[string]any, len(v))
	for k, vs := range v {
		if len(vs) == 1 {
			out[k] = vs[0]
		} else {
			out[k] = vs
		}
	}
	return out
}

func flattenHeaders(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Header)+1)
	for k, vs := range r.Header {
		out[k] = strings.Join(vs, ",")
	}
	out["Host"] = r.Host
	return out
}

// fileContent returns text files verbatim and anything else as a data URL.
func fileContent(data []byte, contentType string) string {
	if utf8.Valid(data) && (contentType == "" || strings.HasPrefix(contentType, "text/") || strings.Contains(contentType, "json")) {
		return string(data)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
