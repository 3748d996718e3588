//go:build linux

package serial

import (
	"golang.org/x/sys/unix"
)

// enableHardwareFlow sets CRTSCTS on the tty. Termios state belongs to the
// device, so a second descriptor changes the port opened by serial.Open.
func enableHardwareFlow(path string) error {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)

	t, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return err
	}
	t.Cflag |= unix.CRTSCTS
	return unix.IoctlSetTermios(fd, unix.TCSETS, t)
}
