package portal

import "time"

// Options bounds every wait and retry loop of the portal flows.
type Options struct {
	LoginAttempts     int
	ProfileTimeout    time.Duration
	PollInterval      time.Duration
	ClickTimeout      time.Duration
	NavigationTimeout time.Duration
	FormTimeout       time.Duration
	CaptchaAttempts   int
	PanelAttempts     int
	PanelTimeout      time.Duration
	SearchDelay       time.Duration
	RetryDelay        time.Duration
	MenuDelay         time.Duration
}

// DefaultOptions returns the bounds used against the live portal.
func DefaultOptions() Options {
	return Options{
		LoginAttempts:     4,
		ProfileTimeout:    45 * time.Second,
		PollInterval:      650 * time.Millisecond,
		ClickTimeout:      20 * time.Second,
		NavigationTimeout: 60 * time.Second,
		FormTimeout:       30 * time.Second,
		CaptchaAttempts:   40,
		PanelAttempts:     4,
		PanelTimeout:      3 * time.Second,
		SearchDelay:       800 * time.Millisecond,
		RetryDelay:        900 * time.Millisecond,
		MenuDelay:         600 * time.Millisecond,
	}
}

// withDefaults fills every zero field from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.LoginAttempts <= 0 {
		o.LoginAttempts = def.LoginAttempts
	}
	if o.ProfileTimeout <= 0 {
		o.ProfileTimeout = def.ProfileTimeout
	}
	if o.PollInterval <= 0 {
		o.PollInterval = def.PollInterval
	}
	if o.ClickTimeout <= 0 {
		o.ClickTimeout = def.ClickTimeout
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = def.NavigationTimeout
	}
	if o.FormTimeout <= 0 {
		o.FormTimeout = def.FormTimeout
	}
	if o.CaptchaAttempts <= 0 {
		o.CaptchaAttempts = def.CaptchaAttempts
	}
	if o.PanelAttempts <= 0 {
		o.PanelAttempts = def.PanelAttempts
	}
	if o.PanelTimeout <= 0 {
		o.PanelTimeout = def.PanelTimeout
	}
	if o.SearchDelay < 0 {
		o.SearchDelay = 0
	}
	if o.RetryDelay < 0 {
		o.RetryDelay = 0
	}
	if o.MenuDelay < 0 {
		o.MenuDelay = 0
	}
	return o
}
