// Package mail sends the application's transactional and newsletter
// emails over SMTP.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// Config holds the SMTP settings for the Mailer.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends emails through a gomail dialer.
type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

// New returns a Mailer for the given SMTP configuration.
func New(cfg Config) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendConfirmationCode emails a registration confirmation code. The
// registration flow cannot proceed without it, so failures propagate.
func (m *Mailer) SendConfirmationCode(to, code string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", `Підтвердження електронної пошти на сайті "Кулінарний куточок"`)

	plain := fmt.Sprintf("Вас вітає команда \"Кулінарний куточок\"!\n\n"+
		"Ваш код для підтвердження електронної пошти: %s\n\n"+
		"Якщо ви не реєструвались на нашому сайті, просто проігноруйте цей лист.", code)

	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; color: #333;">
			<h2>Вас вітає "Кулінарний куточок"!</h2>
			<p>Щоб підтвердити вашу електронну адресу, використайте цей код:</p>
			<p style="font-size: 1.5em; font-weight: bold;">%s</p>
			<p>Цей код дійсний протягом обмеженого часу.</p>
			<hr />
			<p style="font-size: 0.9em; color: gray;">
				Якщо ви не створювали обліковий запис на сайті "Кулінарний куточок", просто проігноруйте цей лист.
			</p>
		</div>`, code)

	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send confirmation code to %s: %w", to, err)
	}
	return nil
}

// SendNewRecipe emails a newsletter subscriber about a new recipe.
func (m *Mailer) SendNewRecipe(to, recipeTitle, recipeURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "🍳 На сайті Кулінарний куточок з’явився новий рецепт!")

	plain := fmt.Sprintf("Новий рецепт: %s. Подивитися можна тут: %s", recipeTitle, recipeURL)

	html := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif;">
			<h2>Новий рецепт: %s</h2>
			<p>Ви можете переглянути його за посиланням:</p>
			<p><a href="%s">%s</a></p>
			<hr />
			<p style="font-size: 0.9em; color: gray;">Ви отримали це повідомлення, бо підписані на нові рецепти.</p>
		</div>`, recipeTitle, recipeURL, recipeURL)

	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send new recipe to %s: %w", to, err)
	}
	return nil
}
