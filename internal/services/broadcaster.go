package services

import "onchain-teller-backend/internal/models"

type Broadcaster interface {
	BroadcastDisplayState(account string, state models.DisplayState)
}
