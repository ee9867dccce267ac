package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/LukaChassaing/meteo-dashboard/internal/meteoapi"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/series"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/service"
	"github.com/LukaChassaing/meteo-dashboard/internal/modules/meteo/types"
	"github.com/LukaChassaing/meteo-dashboard/internal/utils"
)

const (
	headerPeriod = "X-Meteo-Period"
	headerPoints = "X-Meteo-Points"
)

// parsePeriodQuery reads ?period=, defaulting to 24h.
func parsePeriodQuery(r *http.Request) (series.Period, error) {
	return series.ParsePeriod(r.URL.Query().Get("period"))
}

func writeSeries(w http.ResponseWriter, period series.Period, readings []types.Reading) {
	utils.WriteJSONWithHeaders(w, http.StatusOK, readings, map[string]string{
		headerPeriod: period.String(),
		headerPoints: strconv.Itoa(len(readings)),
	})
}

func (c *meteoControllerImpl) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled):
		// Client went away; nobody reads the response.
		c.logger.Debug("request cancelled", "path", r.URL.Path, "error", err)
		return
	case errors.Is(err, context.DeadlineExceeded):
		c.logger.Warn("request timed out", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusGatewayTimeout, "upstream timed out")
	case errors.Is(err, series.ErrUnknownPeriod), errors.Is(err, service.ErrLocationRequired):
		utils.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, meteoapi.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "location not found")
	default:
		c.logger.Error("meteo request failed", "path", r.URL.Path, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load measurements")
	}
}
