package middleware

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RequestIDHeader carries the id assigned to every request
const RequestIDHeader = "X-Request-ID"

var (
	appLogger *log.Logger
)

// InitLogger initializes the file-based logging system. Output goes to
// stdout and to a rotated app-<date>.log in logDir.
func InitLogger(logDir string) error {
	absLogDir, err := filepath.Abs(logDir)
	if err != nil {
		absLogDir = logDir
	}

	if err := os.MkdirAll(absLogDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", absLogDir, err)
	}

	currentDate := time.Now().Format("2006-01-02")

	appLogFile := &lumberjack.Logger{
		Filename:   filepath.Join(absLogDir, fmt.Sprintf("app-%s.log", currentDate)),
		MaxSize:    10, // 10 MB
		MaxBackups: 30,
		MaxAge:     30, // days
		Compress:   true,
		LocalTime:  true,
	}

	out := io.MultiWriter(os.Stdout, appLogFile)
	appLogger = log.New(out, "", log.LstdFlags)

	// Components log through the std logger with [Component] prefixes
	log.SetOutput(out)
	log.SetFlags(log.LstdFlags)

	appLogger.Printf("[INFO] Logger initialized, log file: %s", appLogFile.Filename)
	return nil
}

// LogInfo logs info level messages
func LogInfo(format string, v ...interface{}) {
	logf("[INFO] ", format, v...)
}

// LogError logs error level messages
func LogError(format string, v ...interface{}) {
	logf("[ERROR] ", format, v...)
}

// LogDebug logs debug level messages
func LogDebug(format string, v ...interface{}) {
	logf("[DEBUG] ", format, v...)
}

func logf(level, format string, v ...interface{}) {
	if appLogger != nil {
		appLogger.Printf(level+format, v...)
		return
	}
	log.Printf(level+format, v...)
}

// RequestLoggerMiddleware tags each request with an id and logs
// METHOD URL | status | latency once it completes. Failed requests are
// logged at error level.
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		fullURL := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			fullURL = fullURL + "?" + c.Request.URL.RawQuery
		}

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		if statusCode >= 400 {
			LogError("%s %s | id=%s | status=%d | latency=%v | errors=%s",
				c.Request.Method, fullURL, requestID, statusCode, latency, c.Errors.String())
		} else {
			LogInfo("%s %s | id=%s | status=%d | latency=%v",
				c.Request.Method, fullURL, requestID, statusCode, latency)
		}
	}
}
