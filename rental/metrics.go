package rental

import "github.com/prometheus/client_golang/prometheus"

var (
	rentalsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rentals_started_total",
		Help: "Rentals started",
	})

	rentalsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rentals_completed_total",
		Help: "Rentals completed",
	})

	rentalsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rentals_rejected_total",
			Help: "Rental transitions refused, by error code",
		},
		[]string{"transition", "code"},
	)

	rentalRevenue = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rental_revenue_rsd_total",
		Help: "Revenue of completed rentals in RSD",
	})
)

// RegisterMetrics adds the rental counters to reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(rentalsStarted, rentalsCompleted, rentalsRejected, rentalRevenue)
}
