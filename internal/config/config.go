package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/docker/go-units"

	"github.com/example/retouch/internal/theme"
)

const (
	// DefaultModel is the image model used when [service] model is unset.
	DefaultModel = "gemini-2.5-flash-image-preview"
	// DefaultAPIKeyEnv names the environment variable holding the API key.
	DefaultAPIKeyEnv = "GEMINI_API_KEY"
	// DefaultTimeout bounds a single edit service call.
	DefaultTimeout = 2 * time.Minute
	// DefaultMaxImageSize limits the payload accepted from any image source.
	DefaultMaxImageSize = 20 * units.MB
)

// Notify holds notification settings.
type Notify struct {
	Edit    bool
	Failure bool
	Save    bool
	Copy    bool
}

// Service configures the edit service.
type Service struct {
	Model     string
	APIKeyEnv string
	Timeout   time.Duration
}

// Display configures how images are shown and cropped.
type Display struct {
	DevicePixelRatio float64
}

// Config holds the application configuration.
type Config struct {
	Theme        string
	SaveDir      string
	Presets      string
	MaxImageSize int64
	Service      Service
	Display      Display
	Notify       Notify
	Themes       map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		MaxImageSize: DefaultMaxImageSize,
		Service: Service{
			Model:     DefaultModel,
			APIKeyEnv: DefaultAPIKeyEnv,
			Timeout:   DefaultTimeout,
		},
		Display: Display{DevicePixelRatio: 1},
		Notify: Notify{
			Failure: true,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.Presets != "" {
		fmt.Fprintf(&sb, "presets = %s\n", c.Presets)
	}
	fmt.Fprintf(&sb, "max_image_size = %s\n", units.HumanSize(float64(c.MaxImageSize)))
	sb.WriteString("\n")

	sb.WriteString("[service]\n")
	fmt.Fprintf(&sb, "model = %s\n", c.Service.Model)
	fmt.Fprintf(&sb, "api_key_env = %s\n", c.Service.APIKeyEnv)
	fmt.Fprintf(&sb, "timeout = %s\n", c.Service.Timeout)
	sb.WriteString("\n")

	sb.WriteString("[display]\n")
	fmt.Fprintf(&sb, "device_pixel_ratio = %g\n", c.Display.DevicePixelRatio)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "edit = %v\n", c.Notify.Edit)
	fmt.Fprintf(&sb, "failure = %v\n", c.Notify.Failure)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)
	for _, name := range themeNames {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		sb.WriteString(c.Themes[name].Format(" = "))
		sb.WriteString("\n")
	}

	return sb.String()
}
