package cli

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/xerrors"
)

const (
	flagOutput   = "output"
	formatJSON   = "json"
	formatTable  = "table"
	flagColumns  = "column"
	tableTagName = "table"
)

// OutputFormatter renders a command result of type T for one --output value.
type OutputFormatter[T any] struct {
	Name string
	// AttachFlags, when set, registers formatter-specific flags on the command.
	AttachFlags func(cmd *cobra.Command)
	// Fn reads flags from cmd but must not write to stdout.
	Fn func(cmd *cobra.Command, out T) (string, error)
}

// Formatter builds an OutputFormatter with no extra flags.
func Formatter[T any](name string, fn func(*cobra.Command, T) (string, error)) OutputFormatter[T] {
	return OutputFormatter[T]{Name: name, Fn: fn}
}

// SetupDisplay returns a display function that renders with the formatter selected by
// --output, and a function that attaches --output plus formatter flags to a command.
// JSON is always available.
func SetupDisplay[T any](defaultFormat string, formatters ...OutputFormatter[T]) (func(*cobra.Command, T) error, func(*cobra.Command)) {
	byName := map[string]OutputFormatter[T]{}
	names := []string{}
	for _, f := range formatters {
		if _, dup := byName[f.Name]; dup {
			panic("duplicate output formatter: " + f.Name)
		}
		byName[f.Name] = f
		names = append(names, f.Name)
	}
	if _, ok := byName[formatJSON]; !ok {
		byName[formatJSON] = Formatter(formatJSON, func(_ *cobra.Command, out T) (string, error) {
			return displayJSON(out)
		})
		names = append(names, formatJSON)
	}
	sort.Strings(names)
	if _, ok := byName[defaultFormat]; !ok {
		panic("default output formatter not registered: " + defaultFormat)
	}

	display := func(cmd *cobra.Command, out T) error {
		format, err := cmd.Flags().GetString(flagOutput)
		if err != nil {
			return xerrors.Errorf("read output format: %w", err)
		}
		if format == "" {
			format = defaultFormat
		}
		f, ok := byName[format]
		if !ok {
			return xerrors.Errorf("unknown output format %q, expected one of %q", format, strings.Join(names, `", "`))
		}
		rendered, err := f.Fn(cmd, out)
		if err != nil {
			return xerrors.Errorf("format output as %s: %w", format, err)
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
			return xerrors.Errorf("write output: %w", err)
		}
		return nil
	}

	attach := func(cmd *cobra.Command) {
		value := &enumValue{allowed: names, value: defaultFormat}
		cmd.Flags().VarP(value, flagOutput, "o", "Output format: "+strings.Join(names, ", "))
		for _, f := range formatters {
			if f.AttachFlags != nil {
				f.AttachFlags(cmd)
			}
		}
	}

	return display, attach
}

// DisplayTable renders a slice of structs as a table. Columns come from `table:"name"`
// struct tags in field order. An empty columns list shows every column; sortBy may name one.
func DisplayTable[T any](rows []T, sortBy string, columns []string) (string, error) {
	elem := reflect.TypeOf(rows).Elem()
	if elem.Kind() != reflect.Struct {
		return "", xerrors.Errorf("display table: %s is not a struct", elem)
	}
	headers := tableHeaders(elem)
	if len(headers) == 0 {
		return "", xerrors.Errorf("display table: %s has no table tags", elem)
	}
	if err := checkColumns(headers, columns); err != nil {
		return "", err
	}

	tw := newTableWriter()
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(columnConfigs(headers, columns))
	if sortBy != "" {
		tw.SortBy([]table.SortBy{{Name: sortBy}})
	}

	for _, r := range rows {
		tw.AppendRow(tableRow(reflect.ValueOf(r)))
	}
	return tw.Render(), nil
}

func newTableWriter() table.Writer {
	tw := table.NewWriter()
	style := table.StyleDefault
	style.Options.DrawBorder = false
	style.Options.SeparateColumns = false
	style.Options.SeparateHeader = false
	style.Box.PaddingLeft = ""
	style.Box.PaddingRight = "  "
	tw.SetStyle(style)
	return tw
}

func tableHeaders(t reflect.Type) []string {
	headers := []string{}
	for i := 0; i < t.NumField(); i++ {
		if name := t.Field(i).Tag.Get(tableTagName); name != "" {
			headers = append(headers, name)
		}
	}
	return headers
}

func tableRow(v reflect.Value) table.Row {
	row := table.Row{}
	for i := 0; i < v.NumField(); i++ {
		if v.Type().Field(i).Tag.Get(tableTagName) == "" {
			continue
		}
		row = append(row, v.Field(i).Interface())
	}
	return row
}

func checkColumns(headers, columns []string) error {
	for _, c := range columns {
		found := false
		for _, h := range headers {
			if strings.EqualFold(c, h) {
				found = true
				break
			}
		}
		if !found {
			return xerrors.Errorf("unknown column %q, available columns: %q", c, strings.Join(headers, `", "`))
		}
	}
	return nil
}

func columnConfigs(headers, columns []string) []table.ColumnConfig {
	if len(columns) == 0 {
		return nil
	}
	configs := make([]table.ColumnConfig, 0, len(headers))
	for _, h := range headers {
		hidden := true
		for _, c := range columns {
			if strings.EqualFold(c, h) {
				hidden = false
				break
			}
		}
		configs = append(configs, table.ColumnConfig{Name: h, Hidden: hidden})
	}
	return configs
}

func displayJSON(out any) (string, error) {
	b, err := json.Marshal(out)
	if err != nil {
		return "", xerrors.Errorf("marshal json: %w", err)
	}
	return string(b), nil
}

// enumValue is a flag value restricted to a fixed set of strings.
type enumValue struct {
	allowed []string
	value   string
}

var _ pflag.Value = (*enumValue)(nil)

func (*enumValue) Type() string { return "string" }

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Set(v string) error {
	for _, a := range e.allowed {
		if v == a {
			e.value = v
			return nil
		}
	}
	return xerrors.Errorf("%q is not accepted, expected one of %q", v, strings.Join(e.allowed, `", "`))
}
