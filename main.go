package main

import (
	"embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"friendbook/emailer"
	"friendbook/handler"
	"friendbook/model"
	"friendbook/router"
	"friendbook/store"
	"friendbook/store/jsondb"
	"friendbook/store/mysqldb"
	"friendbook/store/sqlitedb"
	"friendbook/telegram"
	"friendbook/util"
)

//go:embed templates
var tmplBox embed.FS

//go:embed assets
var assetBox embed.FS

var (
	// command-line banner information
	appVersion = "development"
	gitCommit  = "N/A"
	gitRef     = "N/A"
	buildTime  = fmt.Sprintf(time.Now().UTC().Format("01-02-2006 15:04:05"))
)

const (
	defaultBindAddress    = "0.0.0.0:5000"
	defaultWelcomeSubject = "Welcome to Friendbook"
	defaultWelcomeContent = `Hi,</br>
<p>your Friendbook account is ready. Log in, fill in your profile and find your friends.</p>

<p>Best</p>
`
)

func loadConfig() *util.Config {
	cfg := &util.Config{}
	var sessionSecret string

	flag.StringVar(&cfg.BindAddress, "bind-address", util.LookupEnvOrString("BIND_ADDRESS", defaultBindAddress), "Address:Port to which the app will be bound.")
	flag.StringVar(&sessionSecret, "session-secret", util.LookupEnvOrString("SESSION_SECRET", ""), "The key used to sign session cookies. Random when empty.")
	flag.StringVar(&cfg.DBType, "db-type", util.LookupEnvOrString("DB_TYPE", "jsondb"), "Storage backend: jsondb, sqlite or mysql.")
	flag.StringVar(&cfg.DBPath, "db-path", util.LookupEnvOrString("DB_PATH", "./db"), "Path of the file-backed database.")
	flag.StringVar(&cfg.DBHost, "db-host", util.LookupEnvOrString("DB_HOST", "localhost"), "MySQL: host.")
	flag.IntVar(&cfg.DBPort, "db-port", util.LookupEnvOrInt("DB_PORT", 3306), "MySQL: port.")
	flag.StringVar(&cfg.DBUser, "db-user", util.LookupEnvOrString("DB_USER", "root"), "MySQL: username.")
	flag.StringVar(&cfg.DBPassword, "db-password", util.LookupEnvOrString("DB_PASSWORD", ""), "MySQL: password.")
	flag.StringVar(&cfg.DBName, "db-name", util.LookupEnvOrString("DB_NAME", "friendbook"), "MySQL: database name.")
	flag.StringVar(&cfg.DBTLS, "db-tls", util.LookupEnvOrString("DB_TLS", "false"), "MySQL: TLS mode.")
	flag.StringVar(&cfg.AdminEmail, "admin-email", util.LookupEnvOrString("ADMIN_EMAIL", ""), "Email of the bootstrap admin account.")
	flag.StringVar(&cfg.AdminPassword, "admin-password", util.LookupEnvOrString("ADMIN_PASSWORD", ""), "Password of the bootstrap admin account.")
	flag.StringVar(&cfg.SendgridApiKey, "sendgrid-api-key", util.LookupEnvOrString("SENDGRID_API_KEY", ""), "Your sendgrid api key.")
	flag.StringVar(&cfg.EmailFrom, "email-from", util.LookupEnvOrString("EMAIL_FROM_ADDRESS", ""), "'From' email address.")
	flag.StringVar(&cfg.EmailFromName, "email-from-name", util.LookupEnvOrString("EMAIL_FROM_NAME", "Friendbook"), "'From' email name.")
	flag.StringVar(&cfg.SMTPHostname, "smtp-hostname", util.LookupEnvOrString("SMTP_HOSTNAME", ""), "SMTP hostname.")
	flag.IntVar(&cfg.SMTPPort, "smtp-port", util.LookupEnvOrInt("SMTP_PORT", 25), "SMTP port.")
	flag.StringVar(&cfg.SMTPUsername, "smtp-username", util.LookupEnvOrString("SMTP_USERNAME", ""), "SMTP username.")
	flag.StringVar(&cfg.SMTPPassword, "smtp-password", util.LookupEnvOrString("SMTP_PASSWORD", ""), "SMTP password.")
	flag.StringVar(&cfg.SMTPAuthType, "smtp-auth-type", util.LookupEnvOrString("SMTP_AUTH_TYPE", "NONE"), "SMTP auth type: PLAIN, LOGIN or NONE.")
	flag.StringVar(&cfg.SMTPEncryption, "smtp-encryption", util.LookupEnvOrString("SMTP_ENCRYPTION", "STARTTLS"), "SMTP encryption: SSL, SSLTLS, TLS, STARTTLS or NONE.")
	flag.BoolVar(&cfg.SMTPNoTLSCheck, "smtp-no-tls-check", util.LookupEnvOrBool("SMTP_NO_TLS_CHECK", false), "Disable SMTP TLS certificate verification.")
	flag.StringVar(&cfg.TelegramToken, "telegram-token", util.LookupEnvOrString("TELEGRAM_TOKEN", ""), "Telegram bot token for signup notifications.")
	flag.Int64Var(&cfg.TelegramChatID, "telegram-chat-id", util.LookupEnvOrInt64("TELEGRAM_CHAT_ID", 0), "Telegram chat receiving signup notifications.")
	flag.Parse()

	if sessionSecret != "" {
		cfg.SessionSecret = []byte(sessionSecret)
	} else {
		secret, err := util.RandomSecret()
		if err != nil {
			log.Fatal(err)
		}
		cfg.SessionSecret = secret
	}

	return cfg
}

func newStore(cfg *util.Config) (store.IStore, error) {
	switch cfg.DBType {
	case "jsondb":
		return jsondb.New(cfg.DBPath)
	case "sqlite":
		return sqlitedb.New(cfg.DBPath)
	case "mysql":
		return mysqldb.New(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBTLS)
	default:
		return nil, fmt.Errorf("unknown db type: %s", cfg.DBType)
	}
}

// seedAdmin creates the bootstrap admin account when configured. The admin
// flag is never settable through any form, this is the only way in.
func seedAdmin(db store.IStore, cfg *util.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	if _, err := db.GetUserByEmail(cfg.AdminEmail); err == nil {
		return nil
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}

	hash, err := util.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	admin, err := db.CreateUser(model.User{
		Username:     "admin",
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Admin:        true,
	})
	if err != nil {
		return err
	}
	log.Infof("Seeded admin account %s (id %d)", admin.Email, admin.ID)
	return nil
}

func newEmailer(cfg *util.Config) emailer.Emailer {
	if cfg.SendgridApiKey != "" {
		return emailer.NewSendgridApiMail(cfg.SendgridApiKey, cfg.EmailFromName, cfg.EmailFrom)
	}
	if cfg.SMTPHostname != "" {
		return emailer.NewSmtpMail(cfg.SMTPHostname, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.SMTPNoTLSCheck, cfg.SMTPAuthType, cfg.EmailFromName, cfg.EmailFrom, cfg.SMTPEncryption)
	}
	return nil
}

func main() {
	cfg := loadConfig()

	// print app information
	fmt.Println("Friendbook")
	fmt.Println("App Version\t:", appVersion)
	fmt.Println("Git Commit\t:", gitCommit)
	fmt.Println("Git Ref\t\t:", gitRef)
	fmt.Println("Build Time\t:", buildTime)
	fmt.Println("Bind address\t:", cfg.BindAddress)
	fmt.Println("Storage\t\t:", cfg.DBType)

	// initialize the store
	db, err := newStore(cfg)
	if err != nil {
		log.Fatal("Cannot open database: ", err)
	}
	defer db.Close()
	if err := db.Init(); err != nil {
		log.Fatal("Cannot init database: ", err)
	}
	if err := seedAdmin(db, cfg); err != nil {
		log.Fatal("Cannot seed admin account: ", err)
	}

	sendmail := newEmailer(cfg)

	var bot *telegram.Bot
	if cfg.TelegramToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Warn("Cannot start telegram bot: ", err)
		}
	}

	// set app extra data
	extraData := make(map[string]string)
	extraData["appVersion"] = appVersion

	tmplDir, err := fs.Sub(tmplBox, "templates")
	if err != nil {
		log.Fatal(err)
	}
	assetDir, err := fs.Sub(assetBox, "assets")
	if err != nil {
		log.Fatal(err)
	}

	// register routes
	app := router.New(tmplDir, extraData, cfg.SessionSecret)

	app.GET("/", handler.Home())
	app.GET("/shop", handler.Shop())
	app.GET("/reset_password", handler.ResetPassword())

	app.GET("/register", handler.RegisterPage())
	app.POST("/register", handler.Register(db, sendmail, bot, defaultWelcomeSubject, defaultWelcomeContent))
	app.GET("/login", handler.LoginPage())
	app.POST("/login", handler.Login(db))
	app.GET("/logout", handler.Logout(), handler.ValidSession)

	app.GET("/profile", handler.Profile(db), handler.ValidSession)
	app.POST("/profile", handler.UpdateProfile(db), handler.ValidSession)
	app.GET("/friends", handler.Friends(db), handler.ValidSession)

	app.GET("/admin/users", handler.AdminUsers(db), handler.ValidSession, handler.NeedsAdmin(db))
	app.POST("/admin/delete_user/:id", handler.AdminDeleteUser(db), handler.ValidSession, handler.NeedsAdmin(db))

	// serves other static files
	app.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", http.FileServer(http.FS(assetDir)))))

	app.Logger.Fatal(app.Start(cfg.BindAddress))
}
