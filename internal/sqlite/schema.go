package sqlite

// Table DDL as first introduced at schema version 1. Later columns are added
// by migrations, never by editing these statements.
const (
	createBoards = `CREATE TABLE IF NOT EXISTS boards (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL
);`

	createCollections = `CREATE TABLE IF NOT EXISTS collections (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    board_id INTEGER NOT NULL,
    names TEXT NOT NULL,
    FOREIGN KEY (board_id) REFERENCES boards(id) ON DELETE CASCADE
);`

	createTasks = `CREATE TABLE IF NOT EXISTS tasks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    collection_id INTEGER NOT NULL,
    task_order INTEGER NOT NULL DEFAULT 0 CHECK (task_order >= 0),
    names TEXT,
    descriptions TEXT,
    due_date TEXT,
    FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE CASCADE
);`

	createOptions = `CREATE TABLE IF NOT EXISTS options (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

	createSchemaVersion = `CREATE TABLE IF NOT EXISTS schema_version (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    version INTEGER NOT NULL,
    applied_at TEXT NOT NULL
);`
)

// Index DDL.
const (
	idxCollectionsBoard     = `CREATE INDEX IF NOT EXISTS idx_collections_board ON collections(board_id);`
	idxTasksCollectionOrder = `CREATE INDEX IF NOT EXISTS idx_tasks_collection_order ON tasks(collection_id, task_order);`
)

// linearizeTaskOrder renumbers every collection to 0..n-1, keeping the
// existing relative order and breaking ties by id.
const linearizeTaskOrder = `UPDATE tasks SET task_order = (
    SELECT ranked.position FROM (
        SELECT id, ROW_NUMBER() OVER (PARTITION BY collection_id ORDER BY task_order, id) - 1 AS position
        FROM tasks
    ) AS ranked
    WHERE ranked.id = tasks.id
);`

// migrations is the ordered schema history. Versions are strictly increasing
// and never reused; append new steps at the end.
var migrations = []migration{
	{
		version: 1,
		name:    "base tables",
		steps: []migrationStep{
			execDDL(createBoards),
			execDDL(createCollections),
			execDDL(createTasks),
			execDDL(createOptions),
		},
	},
	{
		version: 2,
		name:    "task status",
		steps: []migrationStep{
			addColumn("tasks", "status", "TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'done'))"),
		},
	},
	{
		version: 3,
		name:    "board and collection colors",
		steps: []migrationStep{
			addColumn("boards", "color", "TEXT"),
			addColumn("collections", "color", "TEXT"),
		},
	},
	{
		version: 4,
		name:    "lookup indexes",
		steps: []migrationStep{
			execDDL(idxCollectionsBoard),
			execDDL(idxTasksCollectionOrder),
		},
	},
	{
		version: 5,
		name:    "contiguous task order",
		steps: []migrationStep{
			execDDL(linearizeTaskOrder),
		},
	},
}

// latestVersion is the schema version a fully migrated store reports.
func latestVersion() int {
	return migrations[len(migrations)-1].version
}
