package server

import (
	"log/slog"
	"strings"

	"github.com/TripleSteak/Final-Aisle/pkg/crypto"
	"github.com/TripleSteak/Final-Aisle/pkg/model"
	"github.com/TripleSteak/Final-Aisle/pkg/packet"
)

// dispatch consumes the event channel until shutdown. All session and
// presence state is mutated here and only here.
func (s *Server) dispatch() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case ev := <-s.events:
			switch ev := ev.(type) {
			case ConnectedEvent:
				// Session key delivered; waiting on the secure ack.
			case DisconnectedEvent:
				s.presence.LogOut(ev.Session)
			case PacketEvent:
				s.handlePacket(ev.Session, ev.Packet)
			}
		}
	}
}

// handlePacket routes one decoded packet. Until the client confirms it
// can read encrypted traffic, everything except the confirmation is
// discarded.
func (s *Server) handlePacket(sess *Session, pkt packet.Packet) {
	if !sess.secure {
		if pkt.Key() == packet.KeySecureEstablished {
			sess.secure = true
			s.metrics.SecureSessions.Add(1)
			slog.Debug("secure channel confirmed", "session", sess.id)
		} else {
			slog.Warn("packet before secure ack, dropping",
				"session", sess.id, "key", pkt.Key())
		}
		return
	}

	switch pkt.Key() {
	case packet.KeyTryNewAccount, packet.KeyTryVerifyEmail, packet.KeyTryLogin:
		// Account flow keys are meaningless once the session is bound
		// to an account; honoring them would let a logged-in player
		// swap accounts under a stale presence announcement.
		if sess.account != nil {
			slog.Warn("account flow packet after login, dropping",
				"session", sess.id, "key", pkt.Key())
			return
		}
		switch pkt.Key() {
		case packet.KeyTryNewAccount:
			s.handleTryNewAccount(sess, pkt)
		case packet.KeyTryVerifyEmail:
			s.handleTryVerifyEmail(sess, pkt)
		case packet.KeyTryLogin:
			s.handleTryLogin(sess, pkt)
		}
	case packet.KeyPlayerPostConnect:
		if s.presence.Online(sess.id) {
			s.presence.PostLogin(sess)
		} else {
			slog.Warn("post-connect before login, dropping", "session", sess.id)
		}
	case packet.KeyMovementInput, packet.KeyMovementJump, packet.KeyMovementRoll,
		packet.KeyMovementToggleProne, packet.KeyTransformPosition, packet.KeyTransformRotation:
		s.handleMovement(sess, pkt)
	default:
		slog.Warn("unhandled packet", "session", sess.id, "key", pkt.Key(), "type", pkt.Type())
	}
}

// handleTryNewAccount starts a registration: [email, username,
// password]. Email availability is checked before username, so a
// request failing both reports the email conflict.
func (s *Server) handleTryNewAccount(sess *Session, pkt packet.Packet) {
	comp, err := pkt.Composite()
	if err != nil || comp.Len() != 3 {
		slog.Warn("malformed registration request", "session", sess.id, "err", err)
		return
	}
	emailAddr, _ := comp.String(0)
	username, _ := comp.String(1)
	password, _ := comp.String(2)

	if _, taken := s.store.UUIDFromEmail(emailAddr); taken {
		s.send(sess, packet.NewEmpty(packet.KeyEmailAlreadyTaken))
		return
	}
	if _, taken := s.store.UUIDFromUsername(username); taken {
		s.send(sess, packet.NewEmpty(packet.KeyUsernameAlreadyTaken))
		return
	}
	// Format failures are treated like any other malformed request;
	// there is no protocol key for them and a conflict reply would lie.
	if err := model.ValidateUsername(username); err != nil {
		slog.Warn("registration with invalid username", "session", sess.id, "err", err)
		return
	}
	if err := model.ValidateEmail(emailAddr); err != nil {
		slog.Warn("registration with invalid email", "session", sess.id, "err", err)
		return
	}

	// The sent acknowledgement goes out first; mail delivery happens
	// off the dispatcher and may lag behind it.
	s.send(sess, packet.NewEmpty(packet.KeyEmailVerifySent))

	// Re-registering mid-verification keeps the outstanding code so
	// the earlier mail stays valid; the attempt budget starts over.
	code := ""
	if sess.pending != nil {
		code = sess.pending.Code
	} else {
		code, err = crypto.GenerateVerificationCode()
		if err != nil {
			slog.Error("verification code generation failed", "session", sess.id, "err", err)
			return
		}
	}
	sess.pending = model.NewPendingRegistration(emailAddr, username, password, code)

	go func() {
		if err := s.mail.SendVerification(emailAddr, username, code); err != nil {
			slog.Error("verification mail failed", "session", sess.id, "err", err)
		}
	}()
	slog.Info("registration started", "session", sess.id, "username", username)
}

// handleTryVerifyEmail checks a submitted code against the session's
// pending registration and creates the account on a match.
func (s *Server) handleTryVerifyEmail(sess *Session, pkt packet.Packet) {
	code, err := pkt.String()
	if err != nil {
		slog.Warn("malformed verification request", "session", sess.id, "err", err)
		return
	}

	pending := sess.pending
	if pending == nil {
		s.send(sess, packet.NewInt(packet.KeyEmailVerifyFail, 0))
		return
	}

	if !strings.EqualFold(code, pending.Code) {
		s.metrics.VerifyFailures.Add(1)
		pending.AttemptsLeft--
		if pending.AttemptsLeft <= 0 {
			// Out of attempts; the whole registration starts over.
			sess.pending = nil
			s.send(sess, packet.NewInt(packet.KeyEmailVerifyFail, 0))
			return
		}
		s.send(sess, packet.NewInt(packet.KeyEmailVerifyFail, pending.AttemptsLeft))
		return
	}

	acct, err := s.store.CreateAccount(pending.Email, pending.Username, pending.Password)
	if err != nil {
		// The code was right, so this is a server-side fault; keep the
		// registration alive and let the client retry.
		slog.Error("account creation failed", "session", sess.id, "err", err)
		s.send(sess, packet.NewInt(packet.KeyEmailVerifyFail, pending.AttemptsLeft))
		return
	}
	sess.pending = nil
	sess.account = acct
	s.metrics.AccountsCreated.Add(1)
	s.metrics.SuccessfulLogins.Add(1)
	slog.Info("account created", "session", sess.id, "username", acct.Username)

	s.send(sess, packet.NewEmpty(packet.KeyEmailVerifySuccess))
	s.completeLogin(sess)
}

// handleTryLogin authenticates [identifier, password], where the
// identifier may be either the email or the username.
func (s *Server) handleTryLogin(sess *Session, pkt packet.Packet) {
	comp, err := pkt.Composite()
	if err != nil || comp.Len() != 2 {
		slog.Warn("malformed login request", "session", sess.id, "err", err)
		return
	}
	identifier, _ := comp.String(0)
	password, _ := comp.String(1)

	id, ok := s.store.UUIDFromEmail(identifier)
	if !ok {
		id, ok = s.store.UUIDFromUsername(identifier)
	}
	if !ok {
		s.metrics.FailedLogins.Add(1)
		s.send(sess, packet.NewEmpty(packet.KeyLoginFail))
		return
	}

	match, err := s.store.CheckPassword(id, password)
	if err != nil {
		slog.Error("password check failed", "session", sess.id, "err", err)
		s.send(sess, packet.NewEmpty(packet.KeyLoginFail))
		return
	}
	if !match {
		s.metrics.FailedLogins.Add(1)
		s.send(sess, packet.NewEmpty(packet.KeyLoginFail))
		return
	}

	acct, err := s.store.LoadAccount(id)
	if err != nil {
		slog.Error("account load failed", "session", sess.id, "account", id, "err", err)
		s.send(sess, packet.NewEmpty(packet.KeyLoginFail))
		return
	}
	sess.account = acct
	s.metrics.SuccessfulLogins.Add(1)
	slog.Info("login succeeded", "session", sess.id, "username", acct.Username)

	s.send(sess, packet.NewEmpty(packet.KeyLoginSuccess))
	s.completeLogin(sess)
}

// completeLogin runs the shared tail of verification and login:
// deliver the active character and enter the world.
func (s *Server) completeLogin(sess *Session) {
	ch, err := sess.account.ActiveCharacter()
	if err != nil {
		slog.Error("logged-in account has no active character", "session", sess.id, "err", err)
		return
	}
	s.send(sess, packet.MustComposite(packet.KeyCharacterInfo, ch.SheetComponents()...))
	s.presence.LogIn(sess)
}

// handleMovement rebroadcasts a gameplay packet to every other online
// player with the mover's session ID prefixed, so receivers know whose
// avatar to move.
func (s *Server) handleMovement(sess *Session, pkt packet.Packet) {
	if !s.presence.Online(sess.id) {
		slog.Warn("movement before login, dropping", "session", sess.id, "key", pkt.Key())
		return
	}

	out, ok := s.tagMovement(sess, pkt)
	if !ok {
		slog.Warn("malformed movement packet", "session", sess.id, "key", pkt.Key())
		return
	}
	s.metrics.MovementRelayed.Add(1)
	s.presence.Broadcast(out, sess.id)
}

// tagMovement rebuilds a client movement packet as its broadcast form.
func (s *Server) tagMovement(sess *Session, pkt packet.Packet) (packet.Packet, bool) {
	id := int(sess.id)
	switch pkt.Key() {
	case packet.KeyMovementInput:
		comp, err := pkt.Composite()
		if err != nil || comp.Len() != 2 {
			return packet.Packet{}, false
		}
		x, errX := comp.Float(0)
		y, errY := comp.Float(1)
		if errX != nil || errY != nil {
			return packet.Packet{}, false
		}
		return packet.MustComposite(packet.KeyMovementInput, id, x, y), true

	case packet.KeyMovementJump:
		if pkt.Type() != packet.TypeEmpty {
			return packet.Packet{}, false
		}
		return packet.NewInt(packet.KeyMovementJump, id), true

	case packet.KeyMovementRoll:
		rot, err := pkt.Float()
		if err != nil {
			return packet.Packet{}, false
		}
		return packet.MustComposite(packet.KeyMovementRoll, id, rot), true

	case packet.KeyMovementToggleProne:
		prone, err := pkt.Bool()
		if err != nil {
			return packet.Packet{}, false
		}
		return packet.MustComposite(packet.KeyMovementToggleProne, id, prone), true

	case packet.KeyTransformPosition:
		comp, err := pkt.Composite()
		if err != nil || comp.Len() != 3 {
			return packet.Packet{}, false
		}
		x, errX := comp.Float(0)
		y, errY := comp.Float(1)
		z, errZ := comp.Float(2)
		if errX != nil || errY != nil || errZ != nil {
			return packet.Packet{}, false
		}
		return packet.MustComposite(packet.KeyTransformPosition, id, x, y, z), true

	case packet.KeyTransformRotation:
		rot, err := pkt.Float()
		if err != nil {
			return packet.Packet{}, false
		}
		return packet.MustComposite(packet.KeyTransformRotation, id, rot), true
	}
	return packet.Packet{}, false
}
