package http

import (
	"net/http"

	"github.com/jaekwang-park/task-api/internal/http/handler"
	"github.com/jaekwang-park/task-api/internal/service"
)

func NewRouter(taskSvc *service.TaskService, authSvc *service.AuthService, db handler.Pinger) http.Handler {
	mux := http.NewServeMux()

	// Health check stays unauthenticated for load balancer probes
	mux.Handle("/health", handler.NewHealthHandler(db))

	authHandler := handler.NewAuthHandler(authSvc)
	for _, p := range []string{"/register", "/login", "/logout", "/profile"} {
		mux.Handle(p, authHandler)
	}

	taskHandler := handler.NewTaskHandler(taskSvc)
	mux.Handle("/tasks", taskHandler)
	mux.Handle("/tasks/", taskHandler)

	mux.HandleFunc("/", handler.NotFound)

	return mux
}
