package db

import "context"

const schema = `
CREATE TABLE IF NOT EXISTS app_users (
    id            UUID PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    full_name     TEXT,
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    last_login_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS devices (
    id                 UUID PRIMARY KEY,
    user_id            UUID NOT NULL REFERENCES app_users(id) ON DELETE CASCADE,
    name               TEXT NOT NULL,
    location           TEXT,
    model              TEXT,
    manufacturer       TEXT,
    serial_number      TEXT,
    external_device_id TEXT,
    timezone           TEXT NOT NULL DEFAULT 'UTC',
    is_active          BOOLEAN NOT NULL DEFAULT TRUE,
    created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS energy_readings (
    id         BIGSERIAL PRIMARY KEY,
    user_id    UUID NOT NULL REFERENCES app_users(id) ON DELETE CASCADE,
    device_id  UUID NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
    ts         TIMESTAMPTZ NOT NULL,
    power_w    DOUBLE PRECISION,
    voltage_v  DOUBLE PRECISION,
    current_a  DOUBLE PRECISION,
    energy_wh  DOUBLE PRECISION,
    source     TEXT NOT NULL DEFAULT 'device',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (device_id, ts)
);
CREATE INDEX IF NOT EXISTS idx_energy_readings_device_ts
    ON energy_readings (user_id, device_id, ts DESC);

CREATE TABLE IF NOT EXISTS alerts (
    id               UUID PRIMARY KEY,
    user_id          UUID NOT NULL REFERENCES app_users(id) ON DELETE CASCADE,
    device_id        UUID REFERENCES devices(id) ON DELETE CASCADE,
    name             TEXT NOT NULL,
    alert_type       TEXT NOT NULL CHECK (alert_type IN ('threshold','anomaly','offline')),
    metric           TEXT NOT NULL DEFAULT 'power_w',
    comparison       TEXT NOT NULL DEFAULT 'gt'
                     CHECK (comparison IN ('gt','gte','lt','lte','eq','neq')),
    threshold        DOUBLE PRECISION,
    window_seconds   INTEGER CHECK (window_seconds >= 1),
    severity         TEXT NOT NULL DEFAULT 'medium'
                     CHECK (severity IN ('low','medium','high','critical')),
    is_enabled       BOOLEAN NOT NULL DEFAULT TRUE,
    cooldown_seconds INTEGER NOT NULL DEFAULT 300 CHECK (cooldown_seconds >= 0),
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS alert_events (
    id              BIGSERIAL PRIMARY KEY,
    user_id         UUID NOT NULL REFERENCES app_users(id) ON DELETE CASCADE,
    alert_id        UUID NOT NULL REFERENCES alerts(id) ON DELETE CASCADE,
    device_id       UUID NOT NULL,
    ts              TIMESTAMPTZ NOT NULL DEFAULT now(),
    status          TEXT NOT NULL
                    CHECK (status IN ('triggered','acknowledged','resolved','suppressed')),
    message         TEXT NOT NULL DEFAULT '',
    metric_value    DOUBLE PRECISION,
    acknowledged_at TIMESTAMPTZ,
    resolved_at     TIMESTAMPTZ,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_alert_events_pair_ts
    ON alert_events (user_id, alert_id, device_id, ts DESC);
`

// InitSchema creates the tables if they do not exist yet
func (d *DB) InitSchema(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, schema)
	return err
}
