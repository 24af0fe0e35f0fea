package service

import "github.com/prometheus/client_golang/prometheus"

var taskOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_operations_total",
		Help: "Task mutations by operation",
	},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(taskOperations)
}
