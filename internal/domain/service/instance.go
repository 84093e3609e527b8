package service

import (
	"github.com/sirupsen/logrus"
	"github.com/textra/chorebot/internal/domain/contract"
)

type Instance struct {
	Rotation *rotationService
	Cycle    *cycleService
	Relay    *relayService
}

func NewInstance(dm contract.DataManager, transport contract.MessageTransport, deliveryMode string, log *logrus.Logger) *Instance {
	rotation := newRotation(dm, log)

	return &Instance{
		Rotation: rotation,
		Cycle:    newCycle(dm, transport, rotation, deliveryMode, log),
		Relay:    newRelay(dm, transport, log),
	}
}
