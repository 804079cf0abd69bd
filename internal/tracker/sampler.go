package tracker

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Snapshot reads current system utilization: total and available memory from
// /proc/meminfo and the 1-minute load average against the core count.
func Snapshot() (Sample, error) {
	now := time.Now()
	s := Sample{
		TimeDate: now.Format("01/02/06"),
		TimeHour: now.Format("15:04"),
		Cores:    float64(runtime.NumCPU()),
	}

	total, available, err := readMeminfo()
	if err != nil {
		return s, err
	}
	s.Mem = total
	s.MemUtil = total - available

	load, err := readLoadAvg()
	if err != nil {
		return s, err
	}
	s.CoresUtil = load
	return s, nil
}

// readMeminfo parses /proc/meminfo for MemTotal and MemAvailable, in MB.
func readMeminfo() (total, available float64, err error) {
	file, err := os.Open("/proc/meminfo")
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		// Lines look like "MemTotal:       16316372 kB"
		var target *float64
		switch {
		case strings.HasPrefix(line, "MemTotal:"):
			target = &total
		case strings.HasPrefix(line, "MemAvailable:"):
			target = &available
		default:
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, 0, fmt.Errorf("unexpected format in /proc/meminfo: %q", line)
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return 0, 0, err
		}
		*target = kb / 1024
	}
	if total == 0 {
		return 0, 0, fmt.Errorf("MemTotal not found in /proc/meminfo")
	}
	return total, available, scanner.Err()
}

// readLoadAvg returns the 1-minute load average from /proc/loadavg.
func readLoadAvg() (float64, error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("unexpected format in /proc/loadavg")
	}
	return strconv.ParseFloat(fields[0], 64)
}
