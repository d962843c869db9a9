package host

import (
	"log"
	"sync"

	"github.com/benoitkugler/okchart/chart"
)

// Coordinator renders the payloads it receives into a Mount.
type Coordinator struct {
	mount   *Mount
	options chart.Options

	// Override is applied above the style of every payload.
	Override *chart.StyleInput

	mu sync.Mutex // one delivery at a time
}

func NewCoordinator(mount *Mount, options chart.Options) *Coordinator {
	return &Coordinator{mount: mount, options: options}
}

func (c *Coordinator) Mount() *Mount { return c.mount }

// Deliver clears the mount, renders the payload and mounts the new scene.
// Failures are logged and leave the mount empty. The error is also
// returned, for callers able to report it.
func (c *Coordinator) Deliver(payload chart.Payload) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mount.Clear()
	payload.Style = payload.Style.Merge(c.Override)
	scene, report, err := chart.Render(payload, c.options)
	if err != nil {
		log.Printf("host: rendering failed: %s", err)
		return err
	}
	for _, issue := range report.Issues {
		log.Printf("host: %s", issue)
	}
	for i, extent := range report.Extents {
		if extent.Overshoots(c.options.Layout) {
			log.Printf("host: curve of %q leaves the plot area", report.Groups[i].EntityID)
		}
	}
	c.mount.Replace(scene, report)
	return nil
}
