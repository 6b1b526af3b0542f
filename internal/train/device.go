package train

import "os/exec"

// Devices.
const (
	DeviceCUDA = "cuda"
	DeviceCPU  = "cpu"
)

// DetectDevice reports "cuda" when nvidia-smi is on the PATH. A nil
// lookPath uses exec.LookPath.
func DetectDevice(lookPath func(string) (string, error)) string {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath("nvidia-smi"); err == nil {
		return DeviceCUDA
	}
	return DeviceCPU
}
