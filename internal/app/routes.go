package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/slotdesk/slotdesk/internal/config"
)

// RegisterRoutes attaches all HTTP routes to the router. The superadmin
// surface sits behind the admin token middleware; the public surface gets
// CORS for the site's frontend origin.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {
	admin := r.PathPrefix("/api/superadmin").Subrouter()
	admin.Use(deps.AuthTokenValidator.Middleware)

	admin.HandleFunc("/calendar/range", deps.CalendarHandler.GetRange).Methods(http.MethodGet)
	admin.HandleFunc("/calendar", deps.CalendarHandler.CreateEvent).Methods(http.MethodPost)
	admin.HandleFunc("/calendar/{eventId}", deps.CalendarHandler.UpdateEvent).Methods(http.MethodPatch)
	admin.HandleFunc("/calendar/{eventId}", deps.CalendarHandler.DeleteEvent).Methods(http.MethodDelete)

	admin.HandleFunc("/prospects", deps.ProspectHandler.List).Methods(http.MethodGet)
	admin.HandleFunc("/prospects", deps.ProspectHandler.Create).Methods(http.MethodPost)
	admin.HandleFunc("/prospects/{prospectId}", deps.ProspectHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/prospects/{prospectId}", deps.ProspectHandler.Update).Methods(http.MethodPatch)
	admin.HandleFunc("/prospects/{prospectId}", deps.ProspectHandler.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/prospects/{prospectId}/swimlane", deps.ProspectHandler.MoveSwimlane).Methods(http.MethodPatch)
	admin.HandleFunc("/prospects/{prospectId}/tags", deps.ProspectHandler.AddTag).Methods(http.MethodPost)
	admin.HandleFunc("/prospects/{prospectId}/tags/{tag}", deps.ProspectHandler.RemoveTag).Methods(http.MethodDelete)

	admin.HandleFunc("/notifications", deps.NotificationHandler.All).Methods(http.MethodGet)
	admin.HandleFunc("/notifications/unread", deps.NotificationHandler.Unread).Methods(http.MethodGet)
	admin.HandleFunc("/notifications/{notificationId}/read", deps.NotificationHandler.MarkRead).Methods(http.MethodPost)

	public := r.PathPrefix("/api/public").Subrouter()
	publicCors := cors.New(cors.Options{
		AllowedOrigins: cfg.Cors.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	public.Use(publicCors.Handler)

	public.HandleFunc("/schedule", deps.BookingHandler.Schedule).Methods(http.MethodGet)
	public.HandleFunc("/book", deps.BookingHandler.Book).Methods(http.MethodPost)
}
