package xid

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// 测试注入点
var osHostname = os.Hostname

const (
	// EnvMachineID 直接指定机器 ID 的环境变量（0-65535）
	EnvMachineID = "XID_MACHINE_ID"

	// EnvPodName K8s Pod 名称环境变量（通过 Downward API 注入）
	EnvPodName = "POD_NAME"

	// EnvHostname 主机名环境变量
	EnvHostname = "HOSTNAME"
)

// DefaultMachineID 按 XID_MACHINE_ID → POD_NAME → HOSTNAME → os.Hostname()
// 的优先级获取机器 ID。后三者取 xxhash 后折叠为 16 位。
func DefaultMachineID() (uint16, error) {
	if s := os.Getenv(EnvMachineID); s != "" {
		id, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid %s value %q: %w", ErrInvalidConfig, EnvMachineID, s, err)
		}
		return uint16(id), nil
	}

	for _, env := range []string{EnvPodName, EnvHostname} {
		if v := os.Getenv(env); v != "" {
			return hashToMachineID(v), nil
		}
	}

	hostname, err := osHostname()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNoMachineID, err)
	}
	if hostname == "" {
		return 0, fmt.Errorf("%w: %w", ErrNoMachineID, errors.New("os.Hostname returned empty string"))
	}
	return hashToMachineID(hostname), nil
}

// hashToMachineID 将 64 位 xxhash 按 16 位分段异或折叠。
func hashToMachineID(s string) uint16 {
	h := xxhash.Sum64String(s)
	return uint16(h) ^ uint16(h>>16) ^ uint16(h>>32) ^ uint16(h>>48)
}
