// Package hardware enumerates keyboard devices through sysfs. It never
// opens the event devices themselves, so it works without input group
// membership.
package hardware

import (
	"math/bits"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/keyrig/keyrig/lib/log"
)

type vendor struct {
	name string
	id   string
}

var keyboardVendors = map[uint16]vendor{
	0x05AC: {"Apple", "apple"},
	0x046D: {"Logitech", "logitech"},
	0x1532: {"Razer", "razer"},
	0x04D9: {"Holtek", "generic"},
	0x04F2: {"Chicony", "generic"},
	0x0951: {"Kingston", "hyperx"},
	0x1B1C: {"Corsair", "corsair"},
	0x2516: {"Cooler Master", "generic"},
	0x28DA: {"Glorious", "generic"},
	0x320F: {"Ducky", "ducky"},
	0x04B4: {"Keychron", "keychron"},
	0x3434: {"Keychron", "keychron"},
	0x0C45: {"Microdia", "generic"},
	0x258A: {"SINO WEALTH", "generic"},
	0x1EA7: {"SHARKOON", "generic"},
	0x1D50: {"OpenMoko", "generic"},
	0x16C0: {"Van Ooijen", "generic"},
	0xFEED: {"ErgoDox", "ergodox"},
}

const appleVendorID = 0x05AC

var appleKeyboardProducts = map[uint16]string{
	0x0221: "Magic Keyboard (Aluminum)",
	0x022C: "Magic Keyboard",
	0x0267: "Magic Keyboard with Numeric Keypad",
	0x024F: "Magic Keyboard with Touch ID",
	0x0256: "Magic Keyboard with Touch ID and Numeric Keypad",
	0x0314: "Magic Keyboard with Touch ID (M1)",
	0x0315: "Magic Keyboard with Touch ID and Numeric Keypad (M1)",
}

// Keyboard is one detected keyboard device.
type Keyboard struct {
	Name      string
	Path      string
	VendorID  uint16
	ProductID uint16

	IsMac       bool
	IsBluetooth bool
	IsInternal  bool

	BrandName string
	BrandID   string
	ModelName string

	HasNumpad    bool
	HasMediaKeys bool
	HasFnKey     bool
}

type Detector struct {
	inputPath string
}

func NewDetector() *Detector {
	return &Detector{inputPath: "/sys/class/input"}
}

// ListKeyboards returns all detected keyboards, sorted by event node.
func (d *Detector) ListKeyboards() []Keyboard {
	entries, err := filepath.Glob(filepath.Join(d.inputPath, "event*"))
	if err != nil || len(entries) == 0 {
		return nil
	}
	sort.Strings(entries)

	var keyboards []Keyboard
	for _, eventDir := range entries {
		if !isKeyboard(eventDir) {
			continue
		}
		kb, ok := parseDevice(eventDir)
		if !ok {
			continue
		}
		keyboards = append(keyboards, kb)
	}
	return keyboards
}

// MacKeyboards returns the detected Apple keyboards.
func (d *Detector) MacKeyboards() []Keyboard {
	var macs []Keyboard
	for _, kb := range d.ListKeyboards() {
		if kb.IsMac {
			macs = append(macs, kb)
		}
	}
	return macs
}

func readSysfs(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func readHexID(path string) uint16 {
	text, ok := readSysfs(path)
	if !ok {
		return 0
	}
	id, err := strconv.ParseUint(text, 16, 16)
	if err != nil {
		log.Tracef("bad sysfs id %s: %v", path, err)
		return 0
	}
	return uint16(id)
}

func parseDevice(eventDir string) (Keyboard, bool) {
	deviceDir := filepath.Join(eventDir, "device")
	name, ok := readSysfs(filepath.Join(deviceDir, "name"))
	if !ok {
		return Keyboard{}, false
	}

	kb := Keyboard{
		Name:      name,
		Path:      "/dev/input/" + filepath.Base(eventDir),
		VendorID:  readHexID(filepath.Join(deviceDir, "id", "vendor")),
		ProductID: readHexID(filepath.Join(deviceDir, "id", "product")),
	}

	lower := strings.ToLower(name)
	kb.IsMac = kb.VendorID == appleVendorID
	kb.IsBluetooth = strings.Contains(lower, "bluetooth") ||
		isBluetoothDevice(deviceDir)
	kb.IsInternal = strings.Contains(name, "AT Translated") ||
		strings.Contains(lower, "laptop")

	if v, ok := keyboardVendors[kb.VendorID]; ok {
		kb.BrandName, kb.BrandID = v.name, v.id
	} else {
		kb.BrandName, kb.BrandID = "Generic", "generic"
	}
	if kb.IsMac {
		kb.ModelName = appleKeyboardProducts[kb.ProductID]
	}

	kb.HasNumpad = hasNumpad(deviceDir)
	kb.HasMediaKeys = hasMediaKeys(deviceDir)
	kb.HasFnKey = kb.IsMac || strings.Contains(lower, "fn")

	return kb, true
}

// names that mark a non-keyboard input device
var excludePatterns = []string{
	"trackpad", "touchpad", "mouse", "trackball", "touchscreen",
	"touch screen", "tablet", "gamepad", "joystick", "controller",
	"power button", "sleep button", "lid switch", "video bus",
	"pc speaker", "gpio",
}

// isKeyboard filters input devices by name and by how many key
// capability bits they advertise. Mice and buttons map a handful of
// keys; real keyboards map well over fifty.
func isKeyboard(eventDir string) bool {
	deviceDir := filepath.Join(eventDir, "device")

	if name, ok := readSysfs(filepath.Join(deviceDir, "name")); ok {
		lower := strings.ToLower(name)
		for _, p := range excludePatterns {
			if strings.Contains(lower, p) {
				return false
			}
		}
	}

	caps, ok := readSysfs(filepath.Join(deviceDir, "capabilities", "key"))
	if !ok {
		return false
	}
	total := 0
	for _, word := range strings.Fields(caps) {
		v, err := strconv.ParseUint(word, 16, 64)
		if err != nil {
			return false
		}
		total += bits.OnesCount64(v)
	}
	return total > 20
}

func isBluetoothDevice(deviceDir string) bool {
	uevent, ok := readSysfs(filepath.Join(deviceDir, "uevent"))
	return ok && strings.Contains(strings.ToLower(uevent), "bluetooth")
}

func hasNumpad(deviceDir string) bool {
	caps, ok := readSysfs(filepath.Join(deviceDir, "capabilities", "key"))
	return ok && len(caps) > 20
}

func hasMediaKeys(deviceDir string) bool {
	caps, ok := readSysfs(filepath.Join(deviceDir, "capabilities", "key"))
	return ok && len(strings.Fields(caps)) > 3
}
