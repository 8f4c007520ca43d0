package rules

// BuiltinRules is the fixed population of rule codes this analyzer ships
// with, ported from original_source/pythaw/rules/*.py. PW007 does not exist
// in the original rule set and is not invented here -- the gap between
// PW006 and PW008 is carried over verbatim.
func BuiltinRules() []Rule {
	return []Rule{
		{
			Code:    "PW001",
			Message: "boto3.client() should be called at module scope",
			Pattern: "boto3.client",
			What: "Detects boto3.client() calls inside handler functions. These calls create " +
				"AWS service clients, which involves HTTP connection setup and credential resolution.",
			Why: "Creating a boto3 client inside the handler means it is re-created on every " +
				"invocation. Client construction is expensive because it resolves credentials, " +
				"discovers endpoints, and sets up HTTP connections. Moving it to module scope " +
				"lets the runtime reuse the client across warm invocations.",
			Example: "# NG\n" +
				"def handler(event, context):\n" +
				"    client = boto3.client('s3')  # created every invocation\n\n" +
				"# OK\n" +
				"client = boto3.client('s3')  # created once at module load\n\n" +
				"def handler(event, context):\n" +
				"    client.get_object(...)\n",
		},
		{
			Code:    "PW002",
			Message: "boto3.resource() should be called at module scope",
			Pattern: "boto3.resource",
			What: "Detects boto3.resource() calls inside handler functions. These calls create " +
				"AWS high-level resource objects, which involves HTTP connection setup and " +
				"credential resolution.",
			Why: "Creating a boto3 resource inside the handler means it is re-created on every " +
				"invocation. Moving it to module scope lets the runtime reuse the resource " +
				"across warm invocations, reducing cold-start latency.",
			Example: "# NG\n" +
				"def handler(event, context):\n" +
				"    s3 = boto3.resource('s3')  # created every invocation\n\n" +
				"# OK\n" +
				"s3 = boto3.resource('s3')  # created once at module load\n\n" +
				"def handler(event, context):\n" +
				"    s3.Bucket('my-bucket').download_file(...)\n",
		},
		{
			Code:    "PW003",
			Message: "boto3.Session() should be called at module scope",
			Pattern: "boto3.Session",
			What: "Detects boto3.Session() calls inside handler functions. These calls create " +
				"AWS sessions, which involves credential resolution and configuration loading.",
			Why: "Creating a boto3 Session inside the handler means it is re-created on every " +
				"invocation. Session construction reads configuration files and resolves " +
				"credentials; moving it to module scope lets the runtime reuse it across warm " +
				"invocations.",
			Example: "# NG\n" +
				"def handler(event, context):\n" +
				"    session = boto3.Session()  # created every invocation\n\n" +
				"# OK\n" +
				"session = boto3.Session()  # created once at module load\n\n" +
				"def handler(event, context):\n" +
				"    client = session.client('s3')\n",
		},
		{
			Code:    "PW004",
			Message: "pymysql.connect() should be called at module scope",
			Pattern: "pymysql.connect",
			What: "Detects pymysql.connect() calls inside handler functions. These calls " +
				"establish MySQL database connections, which involves TCP handshake and " +
				"authentication.",
			Why: "Creating a MySQL connection inside the handler means a TCP handshake and " +
				"database authentication happen on every invocation. Moving it to module scope " +
				"lets the runtime reuse the connection across warm invocations.",
			Example: "# NG\n" +
				"def handler(event, context):\n" +
				"    conn = pymysql.connect(host='...')  # created every invocation\n\n" +
				"# OK\n" +
				"conn = pymysql.connect(host='...')  # created once at module load\n\n" +
				"def handler(event, context):\n" +
				"    conn.cursor()\n",
		},
		{
			Code:    "PW005",
			Message: "psycopg2.connect() should be called at module scope",
			Pattern: "psycopg2.connect",
			What: "Detects psycopg2.connect() calls inside handler functions. These calls " +
				"establish PostgreSQL database connections, which involves TCP handshake and " +
				"authentication.",
			Why: "Creating a PostgreSQL connection inside the handler means a TCP handshake and " +
				"database authentication happen on every invocation. Moving it to module scope " +
				"lets the runtime reuse the connection across warm invocations.",
			Example: "# NG\n" +
				"def handler(event, context):\n" +
				"    conn = psycopg2.connect(dsn='...')  # created every invocation\n\n" +
				"# OK\n" +
				"conn = psycopg2.connect(dsn='...')  # created once at module load\n\n" +
				"def handler(event, context):\n" +
				"    conn.cursor()\n",
		},
		{
			Code:    "PW006",
			Message: "redis.Redis() should be called at module scope",
			Pattern: "redis.Redis",
			What: "Detects redis.Redis() calls inside handler functions. These calls create " +
				"Redis client connections, which involves TCP handshake and connection pool " +
				"setup.",
			Why: "Creating a Redis client inside the handler means it is re-created on every " +
				"invocation. Moving it to module scope lets the runtime reuse the client across " +
				"warm invocations.",
			Example: "# NG\n" +
				"def handler(event, context):\n" +
				"    r = redis.Redis(host='...')  # created every invocation\n\n" +
				"# OK\n" +
				"r = redis.Redis(host='...')  # created once at module load\n\n" +
				"def handler(event, context):\n" +
				"    r.get('key')\n",
		},
		{
			Code:    "PW008",
			Message: "httpx.Client() should be called at module scope",
			Pattern: "httpx.Client",
			What: "Detects httpx.Client() calls inside handler functions. These calls create " +
				"HTTP client instances with connection pooling, which involves resource " +
				"allocation and configuration.",
			Why: "Creating an httpx Client inside the handler means it is re-created on every " +
				"invocation. Moving it to module scope lets the runtime reuse the client and " +
				"its connection pool across warm invocations.",
			Example: "# NG\n" +
				"def handler(event, context):\n" +
				"    client = httpx.Client()  # created every invocation\n\n" +
				"# OK\n" +
				"client = httpx.Client()  # created once at module load\n\n" +
				"def handler(event, context):\n" +
				"    client.get('https://...')\n",
		},
		{
			Code:    "PW009",
			Message: "requests.Session() should be called at module scope",
			Pattern: "requests.Session",
			What: "Detects requests.Session() calls inside handler functions. These calls " +
				"create HTTP session instances with connection pooling, which involves resource " +
				"allocation and cookie jar initialization.",
			Why: "Creating a requests Session inside the handler means it is re-created on " +
				"every invocation. Moving it to module scope lets the runtime reuse the session " +
				"and its connection pool across warm invocations.",
			Example: "# NG\n" +
				"def handler(event, context):\n" +
				"    session = requests.Session()  # created every invocation\n\n" +
				"# OK\n" +
				"session = requests.Session()  # created once at module load\n\n" +
				"def handler(event, context):\n" +
				"    session.get('https://...')\n",
		},
	}
}
