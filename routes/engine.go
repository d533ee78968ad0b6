package routes

import (
	"sync"
	"time"

	"food-ordering-api/middleware"
	"food-ordering-api/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// MaxMultipartMemory caps the in-memory part of an upload
const MaxMultipartMemory = 10 << 20

var registerOnce sync.Once

// NewEngine builds the router with the shared middleware chain. Cookies
// are credentials, so allowed origins must be listed explicitly.
func NewEngine(log logrus.FieldLogger, allowedOrigins []string) *gin.Engine {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			if err := service.RegisterValidations(v); err != nil {
				log.WithError(err).Error("failed to register binding validations")
			}
		}
	})

	r := gin.New()
	r.MaxMultipartMemory = MaxMultipartMemory
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recovery(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ErrorHandler(log))
	return r
}
