package service

import (
	"github.com/LukaChassaing/meteo-dashboard/internal/mqtt"
)

// RegisterIngest routes readings received over MQTT into the local store.
func (s *Service) RegisterIngest(subscriber mqtt.ReadingSubscriber) {
	subscriber.SetReadingHandler(s.Ingest)
}
