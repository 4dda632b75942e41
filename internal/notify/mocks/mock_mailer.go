package mocks

import (
	"github.com/stretchr/testify/mock"

	"meetapi/internal/model"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) QueueWelcomeEmail(toEmail, userName string) {
	m.Called(toEmail, userName)
}

func (m *MockMailer) QueueMeetingCreatedEmail(toEmail, userName string, meeting *model.Meeting) {
	m.Called(toEmail, userName, meeting)
}
