package config

import "os"

// Android keeps its system properties and runtime under /system.
func isAndroidRuntime() bool {
	if os.Getenv("ANDROID_ROOT") != "" {
		return true
	}
	_, err := os.Stat("/system/build.prop")
	return err == nil
}
