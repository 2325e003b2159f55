package app

import (
	"startstop/internal/config"
	"startstop/internal/cycle"
	"startstop/internal/runtime/supervisor"
)

// ---- Config ----

type Config = config.Config

type ConfigManager = config.ConfigManager

type TaskSpec = config.TaskSpec

var NewConfigManager = config.NewConfigManager

var SummarizeConfigChange = config.SummarizeConfigChange

// ---- Runtime ----

type Supervisor = supervisor.Supervisor

type SupervisorOption = supervisor.SupervisorOption

type SupervisorSnapshot = supervisor.SupervisorSnapshot

var NewSupervisor = supervisor.NewSupervisor

var WithLogger = supervisor.WithLogger

var WithCancelOnError = supervisor.WithCancelOnError

var WithMaxActive = supervisor.WithMaxActive

// ---- Timers ----

type Callback = cycle.Callback

type TimerStatus = cycle.Status
