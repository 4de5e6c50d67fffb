package sqlite

const schema = `
-- Hypotheses table
CREATE TABLE IF NOT EXISTS hypotheses (
    hyp_id TEXT PRIMARY KEY,
    lab_id TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    title TEXT NOT NULL CHECK(length(title) <= 160),
    statement TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    ai_type TEXT NOT NULL DEFAULT 'OTHER',
    ai_subtype TEXT NOT NULL DEFAULT '',
    business_category TEXT NOT NULL DEFAULT '',
    priority TEXT NOT NULL DEFAULT 'MEDIUM',
    stage TEXT NOT NULL DEFAULT 'IDEATION',
    stage_health TEXT NOT NULL DEFAULT 'on-track',
    impact_score REAL NOT NULL,
    feasibility_score REAL NOT NULL,
    confidence_score REAL NOT NULL,
    complexity_score REAL,
    risk_class TEXT NOT NULL DEFAULT 'MEDIUM',
    data_requirements TEXT NOT NULL DEFAULT '{}',
    roi_estimate TEXT,
    time_estimate TEXT,
    success_metrics TEXT NOT NULL DEFAULT '[]',
    dependencies TEXT NOT NULL DEFAULT '[]',
    linked_experiments TEXT NOT NULL DEFAULT '[]',
    tags TEXT NOT NULL DEFAULT '[]',
    links TEXT NOT NULL DEFAULT '[]',
    governance_state TEXT NOT NULL DEFAULT 'NOT_REQUIRED',
    notes TEXT NOT NULL DEFAULT '',
    owners TEXT NOT NULL DEFAULT '[]',
    sponsors TEXT NOT NULL DEFAULT '[]',
    observers TEXT NOT NULL DEFAULT '[]',
    -- Denormalized snapshots (projections of the sub-entity tables)
    gating_checklist TEXT NOT NULL DEFAULT '[]',
    attachments TEXT NOT NULL DEFAULT '[]',
    activity_digest TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    archived_at TEXT,
    -- archived_at invariant: archived records must have it, and only them
    CHECK (
        (stage = 'ARCHIVED' AND archived_at IS NOT NULL) OR
        (stage != 'ARCHIVED' AND archived_at IS NULL)
    )
);

CREATE INDEX IF NOT EXISTS idx_hypotheses_stage ON hypotheses(stage);
CREATE INDEX IF NOT EXISTS idx_hypotheses_created_at ON hypotheses(created_at);
CREATE INDEX IF NOT EXISTS idx_hypotheses_archived_at ON hypotheses(archived_at);

-- Stage history table
CREATE TABLE IF NOT EXISTS stage_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    hyp_id TEXT NOT NULL,
    from_stage TEXT,
    to_stage TEXT NOT NULL,
    changed_at TEXT NOT NULL,
    changed_by TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    FOREIGN KEY (hyp_id) REFERENCES hypotheses(hyp_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_stage_history_hyp ON stage_history(hyp_id);

-- Checklist items table
CREATE TABLE IF NOT EXISTS checklist_items (
    id TEXT PRIMARY KEY,
    hyp_id TEXT NOT NULL,
    label TEXT NOT NULL,
    owner TEXT NOT NULL DEFAULT '',
    owner_email TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    due_at TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (hyp_id) REFERENCES hypotheses(hyp_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_checklist_items_hyp ON checklist_items(hyp_id);

-- Tasks table
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    hyp_id TEXT NOT NULL,
    label TEXT NOT NULL,
    owner TEXT NOT NULL DEFAULT '',
    owner_email TEXT NOT NULL DEFAULT '',
    due TEXT,
    type TEXT NOT NULL DEFAULT 'governance',
    status TEXT NOT NULL DEFAULT 'due-soon',
    severity TEXT NOT NULL DEFAULT 'medium',
    related_stage TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (hyp_id) REFERENCES hypotheses(hyp_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_tasks_hyp ON tasks(hyp_id);

-- Comments table (threaded via parent_id self-reference)
CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    hyp_id TEXT NOT NULL,
    parent_id TEXT,
    author TEXT NOT NULL,
    author_email TEXT NOT NULL DEFAULT '',
    body TEXT NOT NULL,
    is_resolved INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (hyp_id) REFERENCES hypotheses(hyp_id) ON DELETE CASCADE,
    FOREIGN KEY (parent_id) REFERENCES comments(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_comments_hyp ON comments(hyp_id);
CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_id);

-- Attachments table
CREATE TABLE IF NOT EXISTS attachments (
    id TEXT PRIMARY KEY,
    hyp_id TEXT NOT NULL,
    name TEXT NOT NULL,
    file_type TEXT NOT NULL DEFAULT '',
    file_size_bytes INTEGER,
    url TEXT NOT NULL,
    version INTEGER NOT NULL DEFAULT 1,
    uploaded_by TEXT NOT NULL DEFAULT '',
    uploaded_by_email TEXT NOT NULL DEFAULT '',
    uploaded_at TEXT NOT NULL,
    FOREIGN KEY (hyp_id) REFERENCES hypotheses(hyp_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_attachments_hyp ON attachments(hyp_id);

-- Approvals table
CREATE TABLE IF NOT EXISTS approvals (
    id TEXT PRIMARY KEY,
    hyp_id TEXT NOT NULL,
    approver_name TEXT NOT NULL,
    approver_email TEXT NOT NULL DEFAULT '',
    approver_role TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'pending',
    required INTEGER NOT NULL DEFAULT 1,
    decided_at TEXT,
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    FOREIGN KEY (hyp_id) REFERENCES hypotheses(hyp_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_approvals_hyp ON approvals(hyp_id);

-- Activity events table (audit trail)
CREATE TABLE IF NOT EXISTS activity_events (
    id TEXT PRIMARY KEY,
    hyp_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    title TEXT NOT NULL,
    actor TEXT NOT NULL,
    actor_email TEXT NOT NULL DEFAULT '',
    detail TEXT NOT NULL DEFAULT '',
    stage TEXT NOT NULL DEFAULT '',
    impact TEXT NOT NULL DEFAULT 'neutral',
    occurred_at TEXT NOT NULL,
    FOREIGN KEY (hyp_id) REFERENCES hypotheses(hyp_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_activity_events_hyp ON activity_events(hyp_id);
CREATE INDEX IF NOT EXISTS idx_activity_events_occurred ON activity_events(occurred_at);

-- Onboarding sessions table
CREATE TABLE IF NOT EXISTS onboarding_sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    language TEXT NOT NULL DEFAULT 'en',
    mode TEXT NOT NULL DEFAULT 'text',
    industry TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active',
    readiness_score INTEGER NOT NULL DEFAULT 0,
    consent_given INTEGER NOT NULL DEFAULT 0,
    voice_consent INTEGER NOT NULL DEFAULT 0,
    consent_timestamp TEXT,
    time_horizon_months INTEGER NOT NULL DEFAULT 6,
    extracted_summary TEXT NOT NULL DEFAULT '{}',
    roadmap TEXT NOT NULL DEFAULT '{}',
    checklist TEXT NOT NULL DEFAULT '[]',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    deleted_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON onboarding_sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON onboarding_sessions(status);

-- Transcript entries (append-only)
CREATE TABLE IF NOT EXISTS transcript_entries (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    source TEXT NOT NULL DEFAULT 'voice',
    text TEXT NOT NULL,
    created_at TEXT NOT NULL,
    FOREIGN KEY (session_id) REFERENCES onboarding_sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_transcript_session ON transcript_entries(session_id);

-- Session event log (append-only)
CREATE TABLE IF NOT EXISTS session_events (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    event_type TEXT NOT NULL,
    payload TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    FOREIGN KEY (session_id) REFERENCES onboarding_sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id);

-- Config table (for storing settings like the default actor)
CREATE TABLE IF NOT EXISTS config (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
