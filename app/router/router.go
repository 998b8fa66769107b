package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"

	"ad-aid-platform/app/controller"
)

type Controllers struct {
	Template *controller.TemplateController
	Workflow *controller.WorkflowController
	Utils    *controller.UtilsController
	Static   *controller.StaticController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// cors allows any origin, the way the original API was exposed to the studio frontend
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, If-None-Match")
		h.Set("Access-Control-Expose-Headers", "ETag")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetupRoutes builds the HTTP handler. staticPrefix is the path the byte
// store's public URLs start with ("/static" for the local store).
func SetupRoutes(controllers *Controllers, staticPrefix string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors)

	// Ping endpoint
	r.Get("/ping", pingHandler)

	r.Route("/api", func(r chi.Router) {
		// Templates
		r.Get("/templates", controllers.Template.List)
		r.Post("/templates", controllers.Template.Create)
		r.Get("/templates/{id}", controllers.Template.Get)
		r.Put("/templates/{id}", controllers.Template.Update)
		r.Delete("/templates/{id}", controllers.Template.Delete)
		r.Post("/templates/{id}/mask", controllers.Template.UploadMask)
		r.Get("/templates/{id}/mask/preview", controllers.Template.MaskPreview)

		// Workflows
		r.Post("/workflows/upload", controllers.Workflow.Upload)
		r.Get("/workflows", controllers.Workflow.List)
		r.Post("/workflows", controllers.Workflow.Create)
		r.Get("/workflows/{id}", controllers.Workflow.Get)
		r.Put("/workflows/{id}", controllers.Workflow.Update)
		r.Delete("/workflows/{id}", controllers.Workflow.Delete)

		// Image utilities
		r.Post("/utils/analyze-color", controllers.Utils.AnalyzeColor)
		r.Post("/focal-window/generate", controllers.Utils.GenerateFocalWindow)
	})

	// Byte store objects; only mounted when public URLs are served by this process
	if staticPrefix != "" {
		r.Get(staticPrefix+"/*", controllers.Static.Serve)
		r.Head(staticPrefix+"/*", controllers.Static.Serve)
	}

	return gzhttp.GzipHandler(r)
}
