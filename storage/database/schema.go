package database

const schema = `
CREATE TABLE IF NOT EXISTS "user" (
    id            UUID PRIMARY KEY,
    name          TEXT        NOT NULL,
    username      TEXT        NOT NULL UNIQUE,
    email         TEXT        NOT NULL UNIQUE,
    is_active     BOOLEAN     NOT NULL DEFAULT TRUE,
    roles         TEXT[]      NOT NULL DEFAULT '{}',
    password_hash BYTEA,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL,
    last_login    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS course (
    id               UUID PRIMARY KEY,
    title            TEXT        NOT NULL,
    description      TEXT        NOT NULL,
    instructor_id    UUID        NOT NULL REFERENCES "user" (id),
    thumbnail        TEXT        NOT NULL DEFAULT '',
    price            NUMERIC     NOT NULL DEFAULT 0,
    is_published     BOOLEAN     NOT NULL DEFAULT FALSE,
    is_completed     BOOLEAN     NOT NULL DEFAULT FALSE,
    attendance_open  BOOLEAN     NOT NULL DEFAULT FALSE,
    current_class_id TEXT        NOT NULL DEFAULT '',
    classes          JSONB       NOT NULL DEFAULT '[]',
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS course_instructor_idx ON course (instructor_id);

CREATE TABLE IF NOT EXISTS recording (
    id            UUID PRIMARY KEY,
    course_id     UUID        NOT NULL REFERENCES course (id) ON DELETE CASCADE,
    title         TEXT        NOT NULL,
    drive_file_id TEXT        NOT NULL DEFAULT '',
    drive_link    TEXT        NOT NULL DEFAULT '',
    duration      INTEGER     NOT NULL DEFAULT 0,
    recorded_at   TIMESTAMPTZ NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS recording_course_idx ON recording (course_id);

CREATE TABLE IF NOT EXISTS note (
    id          UUID PRIMARY KEY,
    course_id   UUID        NOT NULL REFERENCES course (id) ON DELETE CASCADE,
    title       TEXT        NOT NULL,
    drive_link  TEXT        NOT NULL,
    description TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS note_course_idx ON note (course_id);

CREATE TABLE IF NOT EXISTS enrollment (
    id          UUID PRIMARY KEY,
    student_id  UUID        NOT NULL REFERENCES "user" (id),
    course_id   UUID        NOT NULL REFERENCES course (id) ON DELETE CASCADE,
    enrolled_at TIMESTAMPTZ NOT NULL,
    progress    JSONB       NOT NULL DEFAULT '{}',
    attendance  TEXT[]      NOT NULL DEFAULT '{}',
    UNIQUE (student_id, course_id)
);
CREATE INDEX IF NOT EXISTS enrollment_course_idx ON enrollment (course_id);

CREATE TABLE IF NOT EXISTS certificate (
    id                    UUID PRIMARY KEY,
    student_id            UUID        NOT NULL REFERENCES "user" (id),
    course_id             UUID        NOT NULL REFERENCES course (id),
    code                  TEXT        NOT NULL UNIQUE,
    student_name          TEXT        NOT NULL,
    course_title          TEXT        NOT NULL,
    instructor_name       TEXT        NOT NULL,
    attendance_count      INTEGER     NOT NULL,
    total_classes         INTEGER     NOT NULL,
    attendance_percentage DOUBLE PRECISION NOT NULL,
    issued_at             TIMESTAMPTZ NOT NULL,
    is_valid              BOOLEAN     NOT NULL DEFAULT TRUE,
    UNIQUE (student_id, course_id)
);
`
