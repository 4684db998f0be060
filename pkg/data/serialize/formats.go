package serialize

// Formats the data generator can write
const (
	FormatCSV    = "csv"
	FormatInflux = "influx"
)

// SupportedFormats returns the output formats with a registered serializer.
func SupportedFormats() []string {
	return []string{
		FormatCSV,
		FormatInflux,
	}
}
