package enum

// PrinterType identifies the paper format of a configured printer
type PrinterType string

const (
	PrinterThermal80mm PrinterType = "thermal-80mm"
	PrinterThermal58mm PrinterType = "thermal-58mm"
	PrinterStandardA4  PrinterType = "standard-a4"
)

// IsValid reports whether t is a supported printer type
func (t PrinterType) IsValid() bool {
	switch t {
	case PrinterThermal80mm, PrinterThermal58mm, PrinterStandardA4:
		return true
	}
	return false
}

// IsThermal reports whether the printer takes ESC/POS jobs
func (t PrinterType) IsThermal() bool {
	return t == PrinterThermal80mm || t == PrinterThermal58mm
}
