package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "recipebox", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "recipebox", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	RecipesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "recipebox", Name: "recipes_created_total", Help: "Total number of recipes created."},
	)
	UsersRegistered = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "recipebox", Name: "users_registered_total", Help: "Total number of user registrations."},
	)
	ImagesUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "recipebox", Name: "recipe_images_uploaded_total", Help: "Total number of recipe image uploads."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(RecipesCreated)
	reg.MustRegister(UsersRegistered)
	reg.MustRegister(ImagesUploaded)
}
