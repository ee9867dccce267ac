package controller

import (
	"net/http"

	"github.com/LukaChassaing/meteo-dashboard/internal/utils"
)

func (c *meteoControllerImpl) handleLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := c.service.Locations(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, locations)
}

func (c *meteoControllerImpl) handleMeasurements(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriodQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := c.service.Measurements(r.Context(), period)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeSeries(w, period, readings)
}

func (c *meteoControllerImpl) handleMeasurementsByLocation(w http.ResponseWriter, r *http.Request) {
	location := r.PathValue("location")
	if location == "" {
		utils.WriteError(w, http.StatusBadRequest, "missing location")
		return
	}

	period, err := parsePeriodQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	readings, err := c.service.MeasurementsByLocation(r.Context(), location, period)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	writeSeries(w, period, readings)
}

func (c *meteoControllerImpl) handleStats(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriodQuery(r)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	stats, err := c.service.Stats(r.Context(), period)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSONWithHeaders(w, http.StatusOK, stats, map[string]string{
		headerPeriod: period.String(),
	})
}

func (c *meteoControllerImpl) handleRawMeasurements(w http.ResponseWriter, r *http.Request) {
	readings, err := c.service.RawMeasurements(r.Context())
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, readings)
}

func (c *meteoControllerImpl) handleRawMeasurementsByLocation(w http.ResponseWriter, r *http.Request) {
	readings, err := c.service.RawMeasurementsByLocation(r.Context(), r.PathValue("location"))
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, readings)
}
