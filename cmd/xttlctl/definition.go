package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/omeyang/xttl/pkg/config/xconf"
	"github.com/omeyang/xttl/pkg/util/xttl"
)

// definition 是配置文件描述的存储：默认设置与初始条目。
type definition struct {
	Store xttl.Config `koanf:"store"`
	Items []item      `koanf:"items"`
}

// item 是一个初始条目，Key 为空时由存储生成。
type item struct {
	Key      string        `koanf:"key"`
	Value    string        `koanf:"value"`
	Lifetime time.Duration `koanf:"lifetime"`
}

// loadDefinition 加载并校验 path 处的存储定义。
// 返回的 Config 用于后续监视文件变更。
func loadDefinition(path string) (xconf.Config, *definition, error) {
	cfg, err := xconf.Load(path)
	if err != nil {
		return nil, nil, err
	}
	def, err := decodeDefinition(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, def, nil
}

func decodeDefinition(cfg xconf.Config) (*definition, error) {
	var def definition
	if err := cfg.Unmarshal("", &def); err != nil {
		return nil, err
	}
	if err := def.Store.Validate(); err != nil {
		return nil, err
	}
	for i, it := range def.Items {
		if it.Lifetime < 0 {
			return nil, fmt.Errorf("%w: items[%d]: got %s", xttl.ErrInvalidLifetime, i, it.Lifetime)
		}
	}
	return &def, nil
}

// MarshalJSON 输出人类可读的时长。
func (d *definition) MarshalJSON() ([]byte, error) {
	type jsonItem struct {
		Key      string `json:"key,omitempty"`
		Value    string `json:"value"`
		Lifetime string `json:"lifetime,omitempty"`
	}
	out := struct {
		Store struct {
			Name     string `json:"name,omitempty"`
			Lifetime string `json:"lifetime"`
		} `json:"store"`
		Items []jsonItem `json:"items"`
	}{Items: make([]jsonItem, 0, len(d.Items))}

	out.Store.Name = d.Store.Name
	out.Store.Lifetime = d.Store.Lifetime.String()
	for _, it := range d.Items {
		ji := jsonItem{Key: it.Key, Value: it.Value}
		if it.Lifetime > 0 {
			ji.Lifetime = it.Lifetime.String()
		}
		out.Items = append(out.Items, ji)
	}
	return json.Marshal(out)
}
