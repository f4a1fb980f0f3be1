package browser

import "context"

// DetachedLauncher registers sessions for browsers whose lifecycle is
// managed outside this process (for example profiles launched by the
// undetected-driver sidecar). Start hands back the profile name as the
// handle; Stop is a no-op.
type DetachedLauncher struct{}

func (DetachedLauncher) Start(_ context.Context, profileName string) (Handle, error) {
	return profileName, nil
}

func (DetachedLauncher) Stop(context.Context, Handle) error {
	return nil
}
