package meteo

import (
	"log/slog"
	"net/http"

	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/controller"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/service"
	"github.com/LukaChassaing/meteo-dashboard/internal/mqtt"
)

// RegisterFeature mounts the meteo routes on mux and, when subscriber is
// non-nil, stores readings arriving over MQTT.
func RegisterFeature(mux *http.ServeMux, svc *service.Service, subscriber mqtt.ReadingSubscriber, logger *slog.Logger) {
	if subscriber != nil {
		svc.RegisterIngest(subscriber)
	}
	controller.NewMeteoController(svc, logger).RegisterRoutes(mux)
}
