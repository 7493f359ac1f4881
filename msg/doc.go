// Package msg reads Outlook .msg files and converts them to MIME email.
//
// A .msg file is a compound file whose storages hold MAPI objects: the
// message, one storage per recipient, one per attachment, and a nested
// message for each attached e-mail or appointment.
//
// # Decoding
//
// [Open] decodes the whole tree eagerly:
//
//	f, err := msg.Open("mail.msg")
//	if err != nil {
//	    return err
//	}
//	defer f.Close()
//
//	m := f.Message()
//	fmt.Println(m.Subject, m.SenderEmail)
//	for _, a := range m.Attachments {
//	    fmt.Println(a.Filename, len(a.Data))
//	}
//
// [Decode] accepts any [Storage], which lets callers supply their own
// compound file reader.
//
// # Assembly
//
// [Assemble] builds an [Email] from a decoded message and [Email.WriteTo]
// serializes it:
//
//	e, err := msg.Assemble(m, msg.WithResolver(msg.ExchangeResolver{DefaultDomain: "example.com"}))
//	if err != nil {
//	    return err
//	}
//	_, err = e.WriteTo(os.Stdout)
//
// Bodies become a multipart/alternative of the plain and HTML bodies. When
// either is missing, views rendered from the compressed RTF body are added.
// Attachments and embedded messages wrap the body in multipart/mixed;
// embedded appointments are attached as iCalendar files.
package msg
