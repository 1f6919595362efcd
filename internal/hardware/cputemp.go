package hardware

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const cpuTempPath = "/sys/class/thermal/thermal_zone0/temp"

// ReadCPUTemp reads the controller CPU temperature from the kernel
// thermal zone, in Celsius. Returns an error on platforms that do not
// expose one; callers treat that as "no reading", not a fault.
func ReadCPUTemp() (float64, error) {
	data, err := os.ReadFile(cpuTempPath)
	if err != nil {
		return 0, fmt.Errorf("cputemp: read %s: %w", cpuTempPath, err)
	}
	millideg, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cputemp: parse: %w", err)
	}
	return float64(millideg) / 1000.0, nil
}
