package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host      string    `koanf:"host"`
	Listen    string    `koanf:"listen"`
	Admin     Admin     `koanf:"admin"`
	Cors      Cors      `koanf:"cors"`
	Database  Database  `koanf:"db"`
	Redis     Redis     `koanf:"redis"`
	Booking   Booking   `koanf:"booking"`
	Reminders Reminders `koanf:"reminders"`
}

type Admin struct {
	// Token guards the /api/superadmin surface. Session management is
	// handled by the reverse proxy in front of this service.
	Token string `koanf:"token"`
}

type Cors struct {
	AllowedOrigins []string `koanf:"allowedorigins"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

type Redis struct {
	Addr     string `koanf:"addr"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

type Booking struct {
	// SlotLockTTLSeconds bounds how long a single booking attempt may hold
	// the per-slot lock.
	SlotLockTTLSeconds int `koanf:"slotlockttlseconds"`
}

type Reminders struct {
	Enabled          bool   `koanf:"enabled"`
	CronSpec         string `koanf:"cronspec"`
	LookaheadMinutes int    `koanf:"lookaheadminutes"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host:   "http://localhost:3000",
		Listen: ":8181",
		Cors: Cors{
			AllowedOrigins: []string{"*"},
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "slotdesk",
			Pass:   "",
			Name:   "slotdesk",
			Schema: "slotdesk",
		},
		Redis: Redis{
			Addr: "localhost:6379",
		},
		Booking: Booking{
			SlotLockTTLSeconds: 10,
		},
		Reminders: Reminders{
			Enabled:          true,
			CronSpec:         "@every 5m",
			LookaheadMinutes: 60,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "SLOTDESK_",
		TransformFunc: func(k, v string) (string, any) {
			// SLOTDESK_DB_HOST -> db.host
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "SLOTDESK_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
