//go:build !linux

package serial

import "github.com/rs/zerolog/log"

func enableHardwareFlow(path string) error {
	log.Warn().Str("path", path).Msg("RTS/CTS flow control is only configured on linux")
	return nil
}
