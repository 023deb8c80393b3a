package telegram

import "clicker_backend/internal/service"

func ValidateInitData(initData, botToken string) bool {
	_, ok := service.ValidateTelegramInitData(initData, botToken)
	return ok
}
