// health.go
//
// Methods for decoding the SMART / Health Information log page
//
// One rigid 512 byte layout. The cumulative counters are 128-bit values and
// are rendered in full precision.
package health

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"nvmeDiags/logpage"
)

// Wire layout of the health page. Reserved runs are kept so binary.Read
// consumes exactly the on-wire 512 bytes.
type healthPage struct {
	CriticalWarning        uint8
	Temperature            uint16
	AvailableSpare         uint8
	AvailableSpareThresh   uint8
	PercentageUsed         uint8
	Rsvd6                  [26]byte
	DataUnitsRead          [16]byte
	DataUnitsWritten       [16]byte
	HostReadCommands       [16]byte
	HostWriteCommands      [16]byte
	ControllerBusyTime     [16]byte
	PowerCycles            [16]byte
	PowerOnHours           [16]byte
	UnsafeShutdowns        [16]byte
	MediaErrors            [16]byte
	NumErrorInfoLogEntries [16]byte
	WarningTempTime        uint32
	ErrorTempTime          uint32
	TempSensor             [8]uint16
	Rsvd216                [296]byte
}

// Critical warning state bits
const (
	warnAvailableSpare = 1 << iota
	warnTemperature
	warnDeviceReliability
	warnReadOnly
	warnVolatileMemoryBackup
)

const maxTempSensors = 7

type HealthDecoder struct{}

var healthDecoder HealthDecoder

// Register decoder function
func init() {
	logpage.RegisterPage(logpage.PageHealth, uint32(binary.Size(healthPage{})), &healthDecoder)
}

func bit(flags uint8, mask uint8) int {
	if flags&mask != 0 {
		return 1
	}
	return 0
}

func (health *HealthDecoder) Decode(buf []byte, w io.Writer) error {
	var page healthPage
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &page); err != nil {
		fmt.Fprintln(w, "short health page:", err)
		return err
	}

	fmt.Fprintln(w, "SMART/Health Information Log")
	fmt.Fprintln(w, "============================")

	fmt.Fprintf(w, "Critical Warning State:         0x%02x\n", page.CriticalWarning)
	fmt.Fprintf(w, " Available spare:               %d\n", bit(page.CriticalWarning, warnAvailableSpare))
	fmt.Fprintf(w, " Temperature:                   %d\n", bit(page.CriticalWarning, warnTemperature))
	fmt.Fprintf(w, " Device reliability:            %d\n", bit(page.CriticalWarning, warnDeviceReliability))
	fmt.Fprintf(w, " Read only:                     %d\n", bit(page.CriticalWarning, warnReadOnly))
	fmt.Fprintf(w, " Volatile memory backup:        %d\n", bit(page.CriticalWarning, warnVolatileMemoryBackup))
	fmt.Fprintf(w, "Temperature:                    %s\n", logpage.Temperature(page.Temperature))
	fmt.Fprintf(w, "Available spare:                %d\n", page.AvailableSpare)
	fmt.Fprintf(w, "Available spare threshold:      %d\n", page.AvailableSpareThresh)
	fmt.Fprintf(w, "Percentage used:                %d\n", page.PercentageUsed)

	counters := []struct {
		label string
		raw   [16]byte
	}{
		{"Data units (512,000 byte) read", page.DataUnitsRead},
		{"Data units written", page.DataUnitsWritten},
		{"Host read commands", page.HostReadCommands},
		{"Host write commands", page.HostWriteCommands},
		{"Controller busy time (minutes)", page.ControllerBusyTime},
		{"Power cycles", page.PowerCycles},
		{"Power on hours", page.PowerOnHours},
		{"Unsafe shutdowns", page.UnsafeShutdowns},
		{"Media errors", page.MediaErrors},
		{"No. error info log entries", page.NumErrorInfoLogEntries},
	}
	for _, c := range counters {
		fmt.Fprintf(w, "%-31s %s\n", c.label+":", logpage.Uint128FromLE(c.raw[:]))
	}

	fmt.Fprintf(w, "Warning Temp Composite Time:    %d\n", page.WarningTempTime)
	fmt.Fprintf(w, "Error Temp Composite Time:      %d\n", page.ErrorTempTime)
	for i := 0; i < maxTempSensors; i++ {
		if page.TempSensor[i] == 0 {
			continue
		}
		fmt.Fprintf(w, "Temperature Sensor %d:           %s\n", i+1, logpage.Temperature(page.TempSensor[i]))
	}
	return nil
}
