package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/radbridge/radbridge/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("radbridge", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
radbridge - DICOM/HL7 transformation engine for radiology integration flows.

Usage:
  radbridge -mode render -template t.tpl -dicom in.dcm [options]
  radbridge -mode map -hl7 in.hl7 [options]

Options:
`)
		flagSet.PrintDefaults()
	}

	modeFlag := flagSet.String("mode", "", "Transformation direction: 'render' (dataset to flat text) or 'map' (flat text to dataset).")
	templateFlag := flagSet.String("template", "", "Template file path, or a template name looked up in the configured template directory.")
	dicomFlag := flagSet.String("dicom", "", "Path to the input DICOM object for render mode.")
	hl7Flag := flagSet.String("hl7", "", "Path to the input flat-text message for map mode.")
	configFlag := flagSet.String("config", "", "Path to a bridge configuration file (HCL). Defaults apply when omitted.")
	outFlag := flagSet.String("out", "", "Output file path. Writes to stdout when omitted.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	mode := strings.ToLower(*modeFlag)
	switch mode {
	case "":
		flagSet.Usage()
		return nil, true, nil
	case "render":
		if *templateFlag == "" || *dicomFlag == "" {
			return nil, false, &ExitError{Code: 2, Message: "render mode requires -template and -dicom"}
		}
	case "map":
		if *hl7Flag == "" {
			return nil, false, &ExitError{Code: 2, Message: "map mode requires -hl7"}
		}
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid mode: must be 'render' or 'map'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	return &app.Config{
		Mode:         mode,
		TemplatePath: *templateFlag,
		DICOMPath:    *dicomFlag,
		HL7Path:      *hl7Flag,
		ConfigPath:   *configFlag,
		OutPath:      *outFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	}, false, nil
}
