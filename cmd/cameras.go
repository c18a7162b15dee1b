package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "Manage cameras",
}

var camerasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cameras",
	Args:  cobra.NoArgs,
	RunE:  runCamerasList,
}

var camerasImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Create cameras from a YAML file",
	Long: `Create cameras from a YAML file of the form:

  cameras:
    - name: Main gate
      ip_address: 10.0.0.20
      location: North entrance

All entries are validated before any camera is created.`,
	Args: cobra.ExactArgs(1),
	RunE: runCamerasImport,
}

func init() {
	rootCmd.AddCommand(camerasCmd)
	camerasCmd.AddCommand(camerasListCmd)
	camerasCmd.AddCommand(camerasImportCmd)
}

type cameraFile struct {
	Cameras []cameraEntry `yaml:"cameras"`
}

type cameraEntry struct {
	Name      string `yaml:"name"`
	IPAddress string `yaml:"ip_address"`
	Location  string `yaml:"location"`
}

// parseCameraFile decodes and validates a camera import file.
func parseCameraFile(r io.Reader) ([]database.Camera, error) {
	var f cameraFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("camera file is empty")
		}
		return nil, fmt.Errorf("parsing camera file: %w", err)
	}

	var errs []error
	cameras := make([]database.Camera, 0, len(f.Cameras))
	for i, e := range f.Cameras {
		c := database.Camera{
			Name:      strings.TrimSpace(e.Name),
			IPAddress: strings.TrimSpace(e.IPAddress),
			Location:  strings.TrimSpace(e.Location),
		}
		switch {
		case c.Name == "":
			errs = append(errs, fmt.Errorf("camera %d: name is required", i+1))
		case len(c.Name) > database.MaxNameLength:
			errs = append(errs, fmt.Errorf("camera %d: name is longer than %d characters", i+1, database.MaxNameLength))
		}
		switch {
		case c.IPAddress == "":
			errs = append(errs, fmt.Errorf("camera %d: ip_address is required", i+1))
		case len(c.IPAddress) > database.MaxIPLength:
			errs = append(errs, fmt.Errorf("camera %d: ip_address is longer than %d characters", i+1, database.MaxIPLength))
		}
		if len(c.Location) > database.MaxLocationLength {
			errs = append(errs, fmt.Errorf("camera %d: location is longer than %d characters", i+1, database.MaxLocationLength))
		}
		cameras = append(cameras, c)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cameras, nil
}

func runCamerasList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	cameras, err := a.Cameras.List(ctx)
	if err != nil {
		return fmt.Errorf("listing cameras: %w", err)
	}
	rows := make([][]string, 0, len(cameras))
	for _, c := range cameras {
		device := a.Config.NX.DeviceFor(strconv.FormatInt(c.ID, 10))
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.IPAddress, c.Location, device})
	}
	fmt.Println(renderTable(
		[]string{"ID", "Name", "IP address", "Location", "NX device"},
		rows,
		[]columnAlignment{alignRight},
	))
	return nil
}

func runCamerasImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening camera file: %w", err)
	}
	defer f.Close()

	cameras, err := parseCameraFile(f)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	for i := range cameras {
		if err := a.Cameras.Create(ctx, &cameras[i]); err != nil {
			return fmt.Errorf("creating camera %q: %w", cameras[i].Name, err)
		}
		fmt.Printf("Created camera %d (%s)\n", cameras[i].ID, cameras[i].Name)
	}
	return nil
}
